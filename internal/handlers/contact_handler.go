package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

type ContactHandler struct {
	contacts *services.ContactService
}

func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) List(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	contacts, err := h.contacts.List(c.UserContext(), ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(contacts)
}

func (h *ContactHandler) Create(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	contact, err := h.contacts.Create(c.UserContext(), ownerID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

func (h *ContactHandler) Update(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	contact, err := h.contacts.Update(c.UserContext(), ownerID, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(contact)
}

func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.contacts.Delete(c.UserContext(), ownerID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ContactHandler) Promote(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	contact, err := h.contacts.Promote(c.UserContext(), ownerID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(contact)
}
