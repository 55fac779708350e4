package projects

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"amani-backend/internal/models"
	"amani-backend/internal/pkg/apperrors"
	"amani-backend/internal/uploads"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

func serviceError(c *fiber.Ctx, err error) error {
	return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
		"success": false,
		"message": apperrors.PublicMessage(err),
	})
}

func boolQuery(c *fiber.Ctx, name string) *bool {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// GET /api/v1/projects?pillarId=&categoryId=&status=&featured=&hidden=
func (h *Handlers) List(c *fiber.Ctx) error {
	var f ListFilter
	if v := c.Query("pillarId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid pillarId"})
		}
		f.PillarID = &id
	}
	if v := c.Query("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid categoryId"})
		}
		f.CategoryID = &id
	}
	f.Status = c.Query("status")
	f.IsFeatured = boolQuery(c, "featured")
	f.IsHidden = boolQuery(c, "hidden")

	items, err := h.Service.List(c.Context(), f)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Projects fetched successfully", "data": items})
}

// GET /api/v1/projects/:id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid project id"})
	}
	detail, err := h.Service.GetWithAssociations(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Project fetched successfully", "data": detail})
}

// GET /api/v1/projects/:id/impacts
func (h *Handlers) GetImpacts(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid project id"})
	}
	views, err := h.Service.GetProjectImpacts(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Project impacts fetched successfully", "data": views})
}

// POST /api/v1/projects — multipart form per the admin UI contract.
func (h *Handlers) Create(c *fiber.Ctx) error {
	in, err := h.parseComposeInput(c)
	if err != nil {
		return serviceError(c, err)
	}
	project, err := h.Service.Create(c.Context(), *in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "message": "Project created successfully", "data": project})
}

// PUT /api/v1/projects/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid project id"})
	}
	in, err := h.parseComposeInput(c)
	if err != nil {
		return serviceError(c, err)
	}
	project, err := h.Service.Update(c.Context(), id, *in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Project updated successfully", "data": project})
}

// DELETE /api/v1/projects/:id — soft delete, retracts contributions.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid project id"})
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Project deleted successfully"})
}

type flagBody struct {
	Value bool `json:"value" form:"value"`
}

// PATCH /api/v1/projects/:id/featured
func (h *Handlers) SetFeatured(c *fiber.Ctx) error {
	return h.setFlag(c, h.Service.SetFeatured, "Project featured flag updated")
}

// PATCH /api/v1/projects/:id/hidden — hiding never touches impact totals.
func (h *Handlers) SetHidden(c *fiber.Ctx) error {
	return h.setFlag(c, h.Service.SetHidden, "Project hidden flag updated")
}

func (h *Handlers) setFlag(c *fiber.Ctx, op func(ctx context.Context, id uuid.UUID, v bool) (*models.Project, error), message string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid project id"})
	}
	var body flagBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	project, err := op(c.Context(), id, body.Value)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": message, "data": project})
}

// parseComposeInput reads the multipart project form: scalar fields,
// JSON-encoded array fields (focus_area_ids, project_impacts, sdg_goals,
// testimonials, gallery_urls) and optional featured_image/gallery files.
func (h *Handlers) parseComposeInput(c *fiber.Ctx) (*ComposeInput, error) {
	in := &ComposeInput{
		Title:            c.FormValue("title"),
		ShortDescription: c.FormValue("short_description"),
		Description:      c.FormValue("description"),
		Location:         c.FormValue("location"),
		Status:           c.FormValue("status"),
	}

	if v := c.FormValue("order_index"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, apperrors.Validation("order_index", "Order index must be a number")
		}
		in.OrderIndex = n
	}
	in.IsFeatured = formBool(c, "is_featured")
	in.IsHidden = formBool(c, "is_hidden")

	if v := c.FormValue("pillarId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, apperrors.Validation("pillarId", "Invalid pillar id")
		}
		in.PillarID = id
	}
	if v := c.FormValue("countryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, apperrors.Validation("countryId", "Invalid country id")
		}
		in.CountryID = &id
	}

	if v := c.FormValue("focus_area_ids"); v != "" {
		var raw []string
		if err := json.Unmarshal([]byte(v), &raw); err != nil {
			return nil, apperrors.Validation("focus_area_ids", "Must be a JSON array of ids")
		}
		for _, r := range raw {
			id, err := uuid.Parse(r)
			if err != nil {
				return nil, apperrors.Validation("focus_area_ids", "Invalid focus area id")
			}
			in.FocusAreaIDs = append(in.FocusAreaIDs, id)
		}
	}

	if v := c.FormValue("project_impacts"); v != "" {
		if err := json.Unmarshal([]byte(v), &in.Contributions); err != nil {
			return nil, apperrors.Validation("project_impacts", "Must be a JSON array of {impact_id, contribution_value}")
		}
	}
	if v := c.FormValue("sdg_goals"); v != "" {
		if err := json.Unmarshal([]byte(v), &in.SdgGoals); err != nil {
			return nil, apperrors.Validation("sdg_goals", "Must be a JSON array of goal numbers")
		}
	}
	if v := c.FormValue("testimonials"); v != "" {
		if err := json.Unmarshal([]byte(v), &in.Testimonials); err != nil {
			return nil, apperrors.Validation("testimonials", "Must be a JSON array of {text, author, position}")
		}
	}
	if v := c.FormValue("gallery_urls"); v != "" {
		if err := json.Unmarshal([]byte(v), &in.GalleryURLs); err != nil {
			return nil, apperrors.Validation("gallery_urls", "Must be a JSON array of URLs")
		}
	}

	if v := c.FormValue("start_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, apperrors.Validation("start_date", "Invalid date format")
		}
		in.StartDate = t
	}
	if v := c.FormValue("end_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, apperrors.Validation("end_date", "Invalid date format")
		}
		in.EndDate = t
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		if files := form.File["featured_image"]; len(files) > 0 {
			urls, err := h.storeFiles(c, files[:1])
			if err != nil {
				return nil, err
			}
			in.FeaturedImageURL = &urls[0]
		}
		if files := form.File["gallery"]; len(files) > 0 {
			urls, err := h.storeFiles(c, files)
			if err != nil {
				return nil, err
			}
			in.GalleryURLs = append(in.GalleryURLs, urls...)
		}
	}

	return in, nil
}

func (h *Handlers) storeFiles(c *fiber.Ctx, headers []*multipart.FileHeader) ([]string, error) {
	files := make([]uploads.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, uploads.File{
			Name:        fh.Filename,
			Content:     content,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return h.Service.StoreMedia(c.Context(), files)
}

func formBool(c *fiber.Ctx, name string) bool {
	v := strings.ToLower(c.FormValue(name))
	return v == "true" || v == "1"
}

func parseDate(v string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.Validation("date", "Invalid date format")
}
