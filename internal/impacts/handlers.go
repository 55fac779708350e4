package impacts

import (
	"strconv"

	"amani-backend/internal/pkg/apperrors"

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

// boolQuery parses an optional ?flag=true|false query param.
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

// GET /api/v1/impacts?is_active=&is_featured=
func (h *Handlers) List(c *fiber.Ctx) error {
	impacts, err := h.Service.List(c.Context(), ListFilter{
		IsActive:   boolQuery(c, "is_active"),
		IsFeatured: boolQuery(c, "is_featured"),
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Impacts fetched successfully", "data": impacts})
}

// GET /api/v1/impacts/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	stats, err := h.Service.GetStats(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Impact stats fetched successfully", "data": stats})
}

// POST /api/v1/impacts
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in CreateImpactInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	impact, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "message": "Impact created successfully", "data": impact})
}

// PUT /api/v1/impacts/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid impact id"})
	}
	var in UpdateImpactInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	impact, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Impact updated successfully", "data": impact})
}

// DELETE /api/v1/impacts/:id — 409 while referenced by active projects.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid impact id"})
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Impact deleted successfully"})
}

// POST /api/v1/impacts/recalculate — rebuilds all totals, returns the list.
func (h *Handlers) Recalculate(c *fiber.Ctx) error {
	impacts, err := h.Service.Recalculate(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Impact totals recalculated", "data": impacts})
}
