package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Create(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	profile, err := h.profiles.CreateProfile(c.UserContext(), ownerID, &req, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *ProfileHandler) GetActive(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	profile, err := h.profiles.GetActive(c.UserContext(), ownerID, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) UpdateDates(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.UpdateDatesRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	profile, err := h.profiles.UpdateDates(c.UserContext(), ownerID, &req, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
