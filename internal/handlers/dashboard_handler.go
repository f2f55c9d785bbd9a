package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	view, err := h.dashboard.BuildDashboard(c.UserContext(), services.PersistedSource{OwnerID: ownerID}, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// Local builds a dashboard from a setup payload the client keeps on the
// device. Nothing is read from or written to the store.
func (h *DashboardHandler) Local(c *fiber.Ctx) error {
	var setup dto.LocalSetup
	if err := c.BodyParser(&setup); err != nil {
		return invalidBody(c)
	}

	view, err := h.dashboard.BuildDashboard(c.UserContext(), services.LocalSource{Setup: setup}, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}
