package categories

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

type categoryBody struct {
	Name string `json:"name" form:"name"`
}

// GET /api/v1/categories
func (h *Handlers) List(c *fiber.Ctx) error {
	categories, err := h.Service.List(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Focus areas fetched successfully", "data": categories})
}

// POST /api/v1/categories
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body categoryBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	category, err := h.Service.Create(c.Context(), body.Name)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "message": "Focus area created successfully", "data": category})
}

// PUT /api/v1/categories/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid focus area id"})
	}
	var body categoryBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	category, err := h.Service.Update(c.Context(), id, body.Name)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Focus area updated successfully", "data": category})
}

// DELETE /api/v1/categories/:id — 409 while referenced by projects.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid focus area id"})
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Focus area deleted successfully"})
}
