package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

type ContentHandler struct {
	content *services.ContentService
}

func NewContentHandler(content *services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

func (h *ContentHandler) List(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var filter dto.ContentFilter
	if err := c.QueryParser(&filter); err != nil {
		return respondError(c, errs.ErrInvalidInput)
	}

	items, err := h.content.List(c.UserContext(), ownerID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// Create is mounted under the admin group.
func (h *ContentHandler) Create(c *fiber.Ctx) error {
	var req dto.ContentItem
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	item, err := h.content.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}
