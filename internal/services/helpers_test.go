package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
)

// scenarioNow is week 13 for an LMP of 2024-01-01.
var scenarioNow = time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		JWTAccessExpiry:   15 * time.Minute,
		JWTRefreshExpiry:  24 * time.Hour,
		AdminEmails:       []string{"admin@mamacare.test"},
		PaymentCurrency:   "KES",
		PremiumPrice:      500,
		PremiumPeriod:     30 * 24 * time.Hour,
		GatewayTimeout:    time.Second,
		GatewayMaxRetries: 0,
		SMSEnabled:        true,
	}
}

type fakePayments struct {
	mu       sync.Mutex
	requests []gateway.PaymentRequest
	err      error
}

func (f *fakePayments) InitiatePayment(_ context.Context, req gateway.PaymentRequest) (*gateway.PaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.PaymentResponse{
		Success:       true,
		TransactionID: "TXN-" + req.Reference,
		CheckoutURL:   "https://pay.test/" + req.Reference,
	}, nil
}

type sentMessage struct {
	phone string
	text  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeNotifier) Notify(phone, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{phone: phone, text: text})
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type testEnv struct {
	db            *gorm.DB
	cfg           *config.Config
	payments      *fakePayments
	notifier      *fakeNotifier
	reminders     *ReminderService
	profiles      *ProfileService
	contacts      *ContactService
	symptoms      *SymptomService
	subscriptions *SubscriptionService
	content       *ContentService
	dashboard     *DashboardService
	auth          *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.OpenTest(t)
	cfg := testConfig()
	env := &testEnv{
		db:       db,
		cfg:      cfg,
		payments: &fakePayments{},
		notifier: &fakeNotifier{},
	}
	env.reminders = NewReminderService(db)
	env.profiles = NewProfileService(db, env.reminders)
	env.contacts = NewContactService(db)
	env.symptoms = NewSymptomService(db)
	env.subscriptions = NewSubscriptionService(db, cfg, env.payments, env.notifier)
	env.subscriptions.now = func() time.Time { return scenarioNow }
	env.content = NewContentService(db, env.subscriptions)
	env.dashboard = NewDashboardService(db, env.profiles, env.reminders, env.symptoms, env.contacts, env.content, env.subscriptions)
	env.auth = NewAuthService(db, cfg)
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x", Phone: "+254700000001", Role: models.RoleUser}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) createProfile(t *testing.T, ownerID uuid.UUID, lmp string) *models.PregnancyProfile {
	t.Helper()
	profile, err := e.profiles.CreateProfile(context.Background(), ownerID, &dto.ProfileRequest{
		LastMenstrualPeriod: lmp,
		Hospital:            "Kenyatta National Hospital",
	}, scenarioNow)
	require.NoError(t, err)
	return profile
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
