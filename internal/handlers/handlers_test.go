package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/services"
)

const webhookSecret = "whsec-test"

type fakePayments struct {
	mu  sync.Mutex
	err error
}

func (f *fakePayments) InitiatePayment(_ context.Context, req gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.PaymentResponse{Success: true, TransactionID: "TXN-" + req.Reference}, nil
}

func (f *fakePayments) SendSMS(context.Context, gateway.SMSRequest) error { return nil }

type server struct {
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	auth     *services.AuthService
	payments *fakePayments
}

func newServer(t *testing.T, mutate ...func(*config.Config)) *server {
	t.Helper()

	db := database.OpenTest(t)
	cfg := &config.Config{
		JWTSecret:            "handler-test-secret",
		JWTAccessExpiry:      15 * time.Minute,
		JWTRefreshExpiry:     24 * time.Hour,
		AdminEmails:          []string{"admin@mamacare.test"},
		GatewayWebhookSecret: webhookSecret,
		GatewayTimeout:       time.Second,
		PaymentCurrency:      "KES",
		PremiumPrice:         500,
		PremiumPeriod:        30 * 24 * time.Hour,
		CORSOrigins:          "*",
	}
	for _, fn := range mutate {
		fn(cfg)
	}

	payments := &fakePayments{}
	notifier := services.NewNotificationService(db, payments, false, time.Second)
	auth := services.NewAuthService(db, cfg)
	reminders := services.NewReminderService(db)
	profiles := services.NewProfileService(db, reminders)
	contacts := services.NewContactService(db)
	symptoms := services.NewSymptomService(db)
	subscriptions := services.NewSubscriptionService(db, cfg, payments, notifier)
	content := services.NewContentService(db, subscriptions)
	dashboard := services.NewDashboardService(db, profiles, reminders, symptoms, contacts, content, subscriptions)

	app := fiber.New()
	routes.Setup(app, cfg, db, routes.Handlers{
		Auth:      handlers.NewAuthHandler(auth),
		Health:    handlers.NewHealthHandler(db),
		Profile:   handlers.NewProfileHandler(profiles),
		Reminder:  handlers.NewReminderHandler(reminders),
		Contact:   handlers.NewContactHandler(contacts),
		Symptom:   handlers.NewSymptomHandler(symptoms),
		Content:   handlers.NewContentHandler(content),
		Payment:   handlers.NewPaymentHandler(cfg, subscriptions, auth),
		Webhook:   handlers.NewWebhookHandler(subscriptions, cfg.GatewayWebhookSecret),
		Dashboard: handlers.NewDashboardHandler(dashboard),
	})

	return &server{app: app, db: db, cfg: cfg, auth: auth, payments: payments}
}

// signUp registers a user directly through the service and returns an
// access token.
func (s *server) signUp(t *testing.T, email string) string {
	t.Helper()
	resp, err := s.auth.Register(context.Background(), &dto.RegisterRequest{
		Email:    email,
		Password: "correct-horse",
		Phone:    "+254712345678",
	})
	require.NoError(t, err)
	return resp.AccessToken
}

type header struct{ key, value string }

func (s *server) do(t *testing.T, method, path, token string, body interface{}, headers ...header) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, h := range headers {
		req.Header.Set(h.key, h.value)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, dest), string(raw))
}

func daysAgo(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format(time.DateOnly)
}
