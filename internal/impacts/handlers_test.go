package impacts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupImpactApp(t *testing.T) (*fiber.App, *Service) {
	s := &Service{DB: setupImpactDB(t)}
	h := &Handlers{Service: s}
	app := fiber.New()
	app.Get("/impacts", h.List)
	app.Get("/impacts/stats", h.GetStats)
	app.Post("/impacts", h.Create)
	app.Put("/impacts/:id", h.Update)
	app.Delete("/impacts/:id", h.Delete)
	app.Post("/impacts/recalculate", h.Recalculate)
	return app, s
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (int, map[string]interface{}) {
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestCreateImpact_Endpoint(t *testing.T) {
	app, _ := setupImpactApp(t)

	status, out := postJSON(t, app, "/impacts", fiber.Map{
		"name":           "Trees Planted",
		"unit":           "trees",
		"starting_value": 1000,
	})
	assert.Equal(t, 201, status)
	assert.Equal(t, true, out["success"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(1000), data["current_value"])

	// Duplicate name is a 409
	status, out = postJSON(t, app, "/impacts", fiber.Map{"name": "TREES PLANTED"})
	assert.Equal(t, 409, status)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "An impact with this name already exists", out["message"])
}

func TestCreateImpact_ValidationError(t *testing.T) {
	app, _ := setupImpactApp(t)
	status, out := postJSON(t, app, "/impacts", fiber.Map{"name": "  "})
	assert.Equal(t, 400, status)
	assert.Equal(t, false, out["success"])
}

func TestUpdateImpact_Endpoint(t *testing.T) {
	app, s := setupImpactApp(t)
	imp, err := s.Create(context.Background(), CreateImpactInput{Name: "Wells", StartingValue: 3})
	require.NoError(t, err)

	b, _ := json.Marshal(fiber.Map{"current_value": 12, "is_featured": true})
	req := httptest.NewRequest("PUT", "/impacts/"+imp.ImpactID.String(), bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	data := out["data"].(map[string]interface{})
	assert.Equal(t, float64(12), data["current_value"])
	assert.Equal(t, float64(3), data["starting_value"])
	assert.Equal(t, true, data["is_featured"])
}

func TestDeleteImpact_EndpointNotFound(t *testing.T) {
	app, _ := setupImpactApp(t)
	req := httptest.NewRequest("DELETE", "/impacts/00000000-0000-0000-0000-000000000001", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestRecalculate_Endpoint(t *testing.T) {
	app, s := setupImpactApp(t)
	_, err := s.Create(context.Background(), CreateImpactInput{Name: "Trees", StartingValue: 500})
	require.NoError(t, err)

	status, out := postJSON(t, app, "/impacts/recalculate", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, true, out["success"])
	data := out["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, float64(500), data[0].(map[string]interface{})["current_value"])
}
