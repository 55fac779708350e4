package pillars

import (
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

// GET /api/v1/pillars
func (h *Handlers) List(c *fiber.Ctx) error {
	pillars, err := h.Service.List(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Pillars fetched successfully", "data": pillars})
}

// GET /api/v1/pillars/:id/categories — the focus areas offered for a pillar.
func (h *Handlers) ListFocusAreas(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid pillar id"})
	}
	categories, err := h.Service.ListFocusAreas(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Focus areas fetched successfully", "data": categories})
}

// POST /api/v1/pillars
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in CreatePillarInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	pillar, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "message": "Pillar created successfully", "data": pillar})
}

// PUT /api/v1/pillars/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid pillar id"})
	}
	var in UpdatePillarInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	pillar, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Pillar updated successfully", "data": pillar})
}

// DELETE /api/v1/pillars/:id — 409 while referenced by projects or members.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid pillar id"})
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Pillar deleted successfully"})
}
