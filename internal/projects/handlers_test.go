package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"amani-backend/internal/impacts"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProjectApp(t *testing.T) (*fiber.App, *fixture) {
	f := setupProjectFixture(t)
	h := &Handlers{Service: f.svc}
	app := fiber.New()
	app.Get("/projects", h.List)
	app.Get("/projects/:id", h.GetByID)
	app.Get("/projects/:id/impacts", h.GetImpacts)
	app.Post("/projects", h.Create)
	app.Put("/projects/:id", h.Update)
	app.Delete("/projects/:id", h.Delete)
	app.Patch("/projects/:id/featured", h.SetFeatured)
	app.Patch("/projects/:id/hidden", h.SetHidden)
	return app, f
}

// projectForm builds the multipart body the admin UI sends.
func projectForm(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile(name, name+".jpg")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeBody(t *testing.T, resp io.Reader) map[string]interface{} {
	body, err := io.ReadAll(resp)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestCreateProject_Endpoint(t *testing.T) {
	app, f := setupProjectApp(t)
	trees, err := f.ledger.Create(context.Background(), impacts.CreateImpactInput{Name: "Trees Planted", StartingValue: 100})
	require.NoError(t, err)

	fields := map[string]string{
		"title":           "Reforest Kilimanjaro",
		"description":     "Planting native species",
		"status":          "ongoing",
		"pillarId":        f.pillar.PillarID.String(),
		"focus_area_ids":  fmt.Sprintf(`["%s"]`, f.focus.CategoryID),
		"project_impacts": fmt.Sprintf(`[{"impact_id":"%s","contribution_value":250}]`, trees.ImpactID),
		"sdg_goals":       `[13,15]`,
		"start_date":      "2025-03-01",
	}
	body, contentType := projectForm(t, fields, map[string][]byte{"featured_image": []byte("jpegdata")})

	req := httptest.NewRequest("POST", "/projects", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	out := decodeBody(t, resp.Body)
	assert.Equal(t, true, out["success"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "Reforest Kilimanjaro", data["title"])
	assert.Contains(t, data["featured_image_url"], "featured_image.jpg")

	assert.Equal(t, int64(350), f.currentValue(t, trees.ImpactID))
}

func TestCreateProject_DuplicateImpact409Shape(t *testing.T) {
	app, f := setupProjectApp(t)
	trees, err := f.ledger.Create(context.Background(), impacts.CreateImpactInput{Name: "Trees"})
	require.NoError(t, err)

	fields := map[string]string{
		"title":          "Dup",
		"description":    "x",
		"pillarId":       f.pillar.PillarID.String(),
		"focus_area_ids": fmt.Sprintf(`["%s"]`, f.focus.CategoryID),
		"project_impacts": fmt.Sprintf(
			`[{"impact_id":"%s","contribution_value":1},{"impact_id":"%s","contribution_value":2}]`,
			trees.ImpactID, trees.ImpactID),
	}
	body, contentType := projectForm(t, fields, nil)
	req := httptest.NewRequest("POST", "/projects", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	out := decodeBody(t, resp.Body)
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["message"], "duplicate impact")
}

func TestGetProjectImpacts_Endpoint(t *testing.T) {
	app, f := setupProjectApp(t)
	ctx := context.Background()
	trees, err := f.ledger.Create(ctx, impacts.CreateImpactInput{Name: "Trees Planted", Unit: "trees"})
	require.NoError(t, err)
	p, err := f.svc.Create(ctx, f.compose("With impacts", ContributionInput{ImpactID: trees.ImpactID, ContributionValue: 42}))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/projects/"+p.ProjectID.String()+"/impacts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	out := decodeBody(t, resp.Body)
	rows := out["data"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "Trees Planted", row["impact_name"])
	assert.Equal(t, "trees", row["unit"])
	assert.Equal(t, float64(42), row["contribution_value"])
}

func TestListProjects_FilterByHidden(t *testing.T) {
	app, f := setupProjectApp(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.compose("Visible"))
	require.NoError(t, err)
	shy, err := f.svc.Create(ctx, f.compose("Shy"))
	require.NoError(t, err)
	_, err = f.svc.SetHidden(ctx, shy.ProjectID, true)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/projects?hidden=false", nil))
	require.NoError(t, err)
	out := decodeBody(t, resp.Body)
	rows := out["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Visible", rows[0].(map[string]interface{})["title"])
}

func TestSetHidden_Endpoint(t *testing.T) {
	app, f := setupProjectApp(t)
	p, err := f.svc.Create(context.Background(), f.compose("Togglable"))
	require.NoError(t, err)

	b, _ := json.Marshal(fiber.Map{"value": true})
	req := httptest.NewRequest("PATCH", "/projects/"+p.ProjectID.String()+"/hidden", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	out := decodeBody(t, resp.Body)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_hidden"])
}

func TestDeleteProject_Endpoint(t *testing.T) {
	app, f := setupProjectApp(t)
	p, err := f.svc.Create(context.Background(), f.compose("Doomed"))
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/projects/"+p.ProjectID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	// Gone from listings
	resp, err = app.Test(httptest.NewRequest("GET", "/projects", nil))
	require.NoError(t, err)
	out := decodeBody(t, resp.Body)
	assert.Empty(t, out["data"])
}

func TestGetProject_InvalidID(t *testing.T) {
	app, _ := setupProjectApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/projects/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
