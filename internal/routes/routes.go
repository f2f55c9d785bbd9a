package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/middleware"
)

// Handlers bundles every HTTP handler the API mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Health    *handlers.HealthHandler
	Profile   *handlers.ProfileHandler
	Reminder  *handlers.ReminderHandler
	Contact   *handlers.ContactHandler
	Symptom   *handlers.SymptomHandler
	Content   *handlers.ContentHandler
	Payment   *handlers.PaymentHandler
	Webhook   *handlers.WebhookHandler
	Dashboard *handlers.DashboardHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	// Local dashboard mode is explicitly public; nothing is persisted.
	api.Post("/dashboard/local", h.Dashboard.Local)

	// Gateway notifications authenticate with the shared secret, not JWT.
	api.Post("/webhooks/payments", h.Webhook.HandlePayment)

	// Protected routes (JWT required) - apply middleware to individual routes
	jwt := middleware.JWTProtected(cfg)

	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/me", jwt, h.Auth.Me)
	api.Put("/me", jwt, h.Auth.UpdateMe)

	api.Post("/profiles", jwt, h.Profile.Create)
	api.Get("/profiles/active", jwt, h.Profile.GetActive)
	api.Put("/profiles/active", jwt, h.Profile.UpdateDates)

	api.Get("/reminders", jwt, h.Reminder.List)
	api.Post("/reminders", jwt, h.Reminder.Create)
	api.Post("/reminders/:id/complete", jwt, h.Reminder.Complete)
	api.Put("/reminders/:id/schedule", jwt, h.Reminder.Reschedule)

	api.Get("/contacts", jwt, h.Contact.List)
	api.Post("/contacts", jwt, h.Contact.Create)
	api.Put("/contacts/:id", jwt, h.Contact.Update)
	api.Delete("/contacts/:id", jwt, h.Contact.Delete)
	api.Post("/contacts/:id/primary", jwt, h.Contact.Promote)

	api.Get("/symptoms", jwt, h.Symptom.List)
	api.Post("/symptoms", jwt, h.Symptom.Create)
	api.Put("/symptoms/:id", jwt, h.Symptom.Update)
	api.Post("/symptoms/:id/resolve", jwt, h.Symptom.Resolve)

	api.Get("/content", jwt, h.Content.List)

	api.Post("/payments", jwt, h.Payment.Create)
	api.Get("/payments", jwt, h.Payment.List)
	api.Get("/subscription", jwt, h.Payment.Subscription)
	api.Post("/subscription/cancel", jwt, h.Payment.Cancel)

	api.Get("/dashboard", jwt, h.Dashboard.Get)

	// Admin (protected + admin required)
	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Post("/content", h.Content.Create)
	admin.Post("/payments/:reference/refund", h.Payment.Refund)
}
