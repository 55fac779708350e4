package countries

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

// GET /api/v1/countries
func (h *Handlers) List(c *fiber.Ctx) error {
	countries, err := h.Service.List(c.Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Countries fetched successfully", "data": countries})
}

// POST /api/v1/countries
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in CountryInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	country, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "message": "Country created successfully", "data": country})
}

// PUT /api/v1/countries/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid country id"})
	}
	var in CountryInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	country, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Country updated successfully", "data": country})
}

// DELETE /api/v1/countries/:id — 409 while referenced by projects.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid country id"})
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Country deleted successfully"})
}
