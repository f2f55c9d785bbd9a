package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mamacare",
		Short:         "MamaCare pregnancy tracker backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		contentCmd(),
		subscriptionsCmd(),
		remindersCmd(),
	)
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

// app bundles the wiring shared by the server and the maintenance commands.
type app struct {
	cfg           *config.Config
	db            *gorm.DB
	gateway       *gateway.Client
	notifier      *services.NotificationService
	auth          *services.AuthService
	reminders     *services.ReminderService
	profiles      *services.ProfileService
	contacts      *services.ContactService
	symptoms      *services.SymptomService
	subscriptions *services.SubscriptionService
	content       *services.ContentService
	dashboard     *services.DashboardService
}

// bootstrap loads config, connects and migrates the database, and builds
// the services.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := database.Connect(cfg); err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.Migrate(database.DB); err != nil {
		_ = database.Close(database.DB)
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	db := database.DB
	a := &app{cfg: cfg, db: db, gateway: gateway.NewClient(cfg)}
	if !a.gateway.IsConfigured() {
		slog.Warn("payment gateway API key not set; payments and SMS will fail")
	}

	a.notifier = services.NewNotificationService(db, a.gateway, cfg.SMSEnabled, cfg.GatewayTimeout)
	a.auth = services.NewAuthService(db, cfg)
	a.reminders = services.NewReminderService(db)
	a.profiles = services.NewProfileService(db, a.reminders)
	a.contacts = services.NewContactService(db)
	a.symptoms = services.NewSymptomService(db)
	a.subscriptions = services.NewSubscriptionService(db, cfg, a.gateway, a.notifier)
	a.content = services.NewContentService(db, a.subscriptions)
	a.dashboard = services.NewDashboardService(db, a.profiles, a.reminders, a.symptoms, a.contacts, a.content, a.subscriptions)
	return a, nil
}

func (a *app) close() {
	a.notifier.Wait()
	if err := database.Close(a.db); err != nil {
		slog.Error("database close error", "error", err)
	}
}

func serve() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	cfg := a.cfg

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(a.db, 5*time.Second)
	logging.Attach(dbLogHandler)

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(a.db, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	server := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	server.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	server.Use(recover.New())
	server.Use(requestid.New())
	server.Use(middleware.RequestContext())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	server.Use(middleware.CORS(cfg))
	server.Use(middleware.SecurityHeaders())

	routes.Setup(server, cfg, a.db, routes.Handlers{
		Auth:      handlers.NewAuthHandler(a.auth),
		Health:    handlers.NewHealthHandler(a.db),
		Profile:   handlers.NewProfileHandler(a.profiles),
		Reminder:  handlers.NewReminderHandler(a.reminders),
		Contact:   handlers.NewContactHandler(a.contacts),
		Symptom:   handlers.NewSymptomHandler(a.symptoms),
		Content:   handlers.NewContentHandler(a.content),
		Payment:   handlers.NewPaymentHandler(cfg, a.subscriptions, a.auth),
		Webhook:   handlers.NewWebhookHandler(a.subscriptions, cfg.GatewayWebhookSecret),
		Dashboard: handlers.NewDashboardHandler(a.dashboard),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		listenErr <- server.Listen(":" + cfg.Port)
	}()

	select {
	case <-quit:
		slog.Info("shutting down server...")
	case err = <-listenErr:
		slog.Error("server failed to start", "error", err)
	}

	if shutdownErr := server.ShutdownWithTimeout(10 * time.Second); shutdownErr != nil {
		slog.Error("server shutdown error", "error", shutdownErr)
	}

	close(cleanupDone)
	a.notifier.Wait()
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)
	a.close()

	slog.Info("server stopped")
	return err
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
