package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

type SymptomHandler struct {
	symptoms *services.SymptomService
}

func NewSymptomHandler(symptoms *services.SymptomService) *SymptomHandler {
	return &SymptomHandler{symptoms: symptoms}
}

func (h *SymptomHandler) List(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	symptoms, err := h.symptoms.List(c.UserContext(), ownerID, c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(symptoms)
}

func (h *SymptomHandler) Create(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.SymptomRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	entry, err := h.symptoms.Log(c.UserContext(), ownerID, &req, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *SymptomHandler) Update(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.SymptomRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	entry, err := h.symptoms.Update(c.UserContext(), ownerID, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

func (h *SymptomHandler) Resolve(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	entry, err := h.symptoms.Resolve(c.UserContext(), ownerID, id, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}
