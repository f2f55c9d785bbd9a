package handlers

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

type WebhookHandler struct {
	subscriptionService *services.SubscriptionService
	secret              string
}

func NewWebhookHandler(subscriptionService *services.SubscriptionService, secret string) *WebhookHandler {
	return &WebhookHandler{
		subscriptionService: subscriptionService,
		secret:              secret,
	}
}

// HandlePayment applies a gateway payment notification. The gateway
// authenticates with the shared secret in the Authorization header.
func (h *WebhookHandler) HandlePayment(c *fiber.Ctx) error {
	if h.secret == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks not configured",
		})
	}

	authHeader := c.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(authHeader), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var notification gateway.Notification
	if err := c.BodyParser(&notification); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook payload",
		})
	}

	result, err := h.subscriptionService.ApplyGatewayResult(c.UserContext(), notification)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "webhook processing failed", "reference", notification.Reference, "status", notification.Status, "error", err)
		return respondError(c, err)
	}

	slog.InfoContext(c.UserContext(), "webhook processed", "reference", notification.Reference, "status", result.Attempt.Status, "applied", result.Applied)
	return c.JSON(dto.WebhookAck{
		Received: true,
		Applied:  result.Applied,
		Status:   result.Attempt.Status,
	})
}
