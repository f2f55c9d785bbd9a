package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

type PaymentHandler struct {
	cfg           *config.Config
	subscriptions *services.SubscriptionService
	auth          *services.AuthService
}

func NewPaymentHandler(cfg *config.Config, subscriptions *services.SubscriptionService, auth *services.AuthService) *PaymentHandler {
	return &PaymentHandler{cfg: cfg, subscriptions: subscriptions, auth: auth}
}

// Create starts a premium payment. The phone defaults to the one on the
// user's account.
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		me, err := h.auth.GetUser(c.UserContext(), ownerID)
		if err != nil {
			return respondError(c, err)
		}
		phone = me.Phone
	}

	attempt, err := h.subscriptions.CreateAttempt(c.UserContext(), ownerID, h.cfg.PremiumPrice, req.Description, phone)
	if errors.Is(err, errs.ErrGateway) && attempt != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   true,
			"message": "Payment gateway unavailable, please try again",
			"payment": dto.NewPaymentResponse(attempt),
		})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPaymentResponse(attempt))
}

func (h *PaymentHandler) List(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	attempts, err := h.subscriptions.ListAttempts(c.UserContext(), ownerID)
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]dto.PaymentResponse, 0, len(attempts))
	for i := range attempts {
		resp = append(resp, dto.NewPaymentResponse(&attempts[i]))
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) Subscription(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	sub, err := h.subscriptions.GetActiveSubscription(c.UserContext(), ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

func (h *PaymentHandler) Cancel(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return respondError(c, err)
	}

	sub, err := h.subscriptions.Cancel(c.UserContext(), ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// Refund is mounted under the admin group.
func (h *PaymentHandler) Refund(c *fiber.Ctx) error {
	attempt, err := h.subscriptions.Refund(c.UserContext(), c.Params("reference"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewPaymentResponse(attempt))
}
