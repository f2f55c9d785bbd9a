package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

const defaultUpcomingLimit = 20

type ReminderHandler struct {
	reminders *services.ReminderService
}

func NewReminderHandler(reminders *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

// List returns every reminder, or only open future ones with ?upcoming=true.
func (h *ReminderHandler) List(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var profileID *uuid.UUID
	if raw := c.Query("profile_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, errs.ErrInvalidInput)
		}
		profileID = &id
	}

	if c.QueryBool("upcoming") {
		limit := c.QueryInt("limit", defaultUpcomingLimit)
		reminders, err := h.reminders.ListUpcoming(c.UserContext(), ownerID, profileID, time.Now(), limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(reminders)
	}

	reminders, err := h.reminders.List(c.UserContext(), ownerID, profileID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reminders)
}

func (h *ReminderHandler) Create(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.CreateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	reminder, err := h.reminders.CreateCustom(c.UserContext(), ownerID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reminder)
}

// Complete answers a repeated completion with 409 and the stored reminder.
func (h *ReminderHandler) Complete(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	reminder, err := h.reminders.Complete(c.UserContext(), ownerID, id, time.Now())
	if errors.Is(err, errs.ErrAlreadyCompleted) && reminder != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    true,
			"message":  err.Error(),
			"reminder": reminder,
		})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reminder)
}

func (h *ReminderHandler) Reschedule(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.RescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	reminder, err := h.reminders.Reschedule(c.UserContext(), ownerID, id, req.ScheduledAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reminder)
}
