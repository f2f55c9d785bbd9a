package handlers_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
)

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	status, body := s.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	var health dto.HealthResponse
	decode(t, body, &health)
	assert.Equal(t, "ok", health.DB)

	status, body = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/me", "/api/dashboard", "/api/reminders", "/api/subscription"} {
		status, body := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		var resp dto.ErrorResponse
		decode(t, body, &resp)
		assert.True(t, resp.Error)
	}

	status, _ := s.do(t, http.MethodGet, "/api/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthEndpoints(t *testing.T) {
	s := newServer(t)

	status, body := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: "mother@mamacare.test", Password: "correct-horse", FullName: "Achieng",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var registered dto.AuthResponse
	decode(t, body, &registered)

	status, _ = s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: "mother@mamacare.test", Password: "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Email: "mother@mamacare.test", Password: "wrong-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = s.do(t, http.MethodPut, "/api/me", registered.AccessToken, map[string]string{"phone": "+254700123456"})
	require.Equal(t, http.StatusOK, status, string(body))
	var me dto.UserResponse
	decode(t, body, &me)
	assert.Equal(t, "+254700123456", me.Phone)
	assert.Equal(t, "Achieng", me.FullName)

	status, body = s.do(t, http.MethodPost, "/api/auth/refresh", "", dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.Equal(t, http.StatusOK, status, string(body))
	var refreshed dto.AuthResponse
	decode(t, body, &refreshed)

	status, _ = s.do(t, http.MethodPost, "/api/auth/logout", refreshed.AccessToken, dto.LogoutRequest{RefreshToken: refreshed.RefreshToken})
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, "/api/auth/refresh", "", dto.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProfileAndReminderFlow(t *testing.T) {
	s := newServer(t)
	token := s.signUp(t, "flow@mamacare.test")

	status, _ := s.do(t, http.MethodGet, "/api/profiles/active", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/profiles", token, dto.ProfileRequest{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(t, http.MethodPost, "/api/profiles", token, dto.ProfileRequest{
		LastMenstrualPeriod: daysAgo(90),
		Hospital:            "Aga Khan",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var profile models.PregnancyProfile
	decode(t, body, &profile)
	assert.Equal(t, 13, profile.CurrentWeek)
	assert.Equal(t, 2, profile.Trimester)

	status, body = s.do(t, http.MethodGet, "/api/reminders?upcoming=true&limit=3", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var upcoming []models.Reminder
	decode(t, body, &upcoming)
	require.NotEmpty(t, upcoming)
	assert.LessOrEqual(t, len(upcoming), 3)

	target := upcoming[0].ID.String()
	status, body = s.do(t, http.MethodPost, "/api/reminders/"+target+"/complete", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var done models.Reminder
	decode(t, body, &done)
	assert.True(t, done.Completed)
	assert.NotNil(t, done.CompletedAt)

	status, body = s.do(t, http.MethodPost, "/api/reminders/"+target+"/complete", token, nil)
	require.Equal(t, http.StatusConflict, status)
	var again struct {
		Error    bool            `json:"error"`
		Reminder models.Reminder `json:"reminder"`
	}
	decode(t, body, &again)
	assert.True(t, again.Error)
	assert.Equal(t, upcoming[0].ID, again.Reminder.ID)
	assert.True(t, again.Reminder.Completed)

	status, _ = s.do(t, http.MethodPut, "/api/reminders/"+target+"/schedule", token, dto.RescheduleRequest{ScheduledAt: done.ScheduledAt.AddDate(0, 0, 1)})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = s.do(t, http.MethodPost, "/api/reminders/not-a-uuid/complete", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var view dto.DashboardView
	decode(t, body, &view)
	assert.Equal(t, "persisted", view.Source)
	assert.Equal(t, 13, view.Timeline.CurrentWeek)
	assert.Equal(t, "Aga Khan", view.Hospital)
	assert.LessOrEqual(t, len(view.UpcomingReminders), 5)
	assert.Equal(t, models.PlanFree, view.Subscription.PlanType)
}

func TestOwnershipIsEnforced(t *testing.T) {
	s := newServer(t)
	alice := s.signUp(t, "alice@mamacare.test")
	bob := s.signUp(t, "bob@mamacare.test")

	status, body := s.do(t, http.MethodPost, "/api/contacts", alice, dto.ContactRequest{Name: "Mama Alice", Phone: "+254711111111"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var contact models.EmergencyContact
	decode(t, body, &contact)
	assert.True(t, contact.IsPrimary)

	path := "/api/contacts/" + contact.ID.String()
	status, _ = s.do(t, http.MethodPut, path, bob, dto.ContactRequest{Name: "Taken", Phone: "+254722222222"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodDelete, "/api/contacts/00000000-0000-0000-0000-000000000001", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, http.MethodGet, "/api/contacts", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))

	status, _ = s.do(t, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestSymptomEndpoints(t *testing.T) {
	s := newServer(t)
	token := s.signUp(t, "symptoms@mamacare.test")

	status, body := s.do(t, http.MethodPost, "/api/symptoms", token, dto.SymptomRequest{Symptom: "Nausea", Severity: "mild"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var entry models.SymptomLog
	decode(t, body, &entry)

	status, _ = s.do(t, http.MethodPost, "/api/symptoms", token, dto.SymptomRequest{Symptom: "Nausea", Severity: "unbearable"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/symptoms/"+entry.ID.String()+"/resolve", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/symptoms/"+entry.ID.String()+"/resolve", token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(t, http.MethodGet, "/api/symptoms?limit=10", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list []models.SymptomLog
	decode(t, body, &list)
	require.Len(t, list, 1)
	assert.True(t, list[0].Resolved)
}

func TestPaymentAndWebhook(t *testing.T) {
	s := newServer(t)
	token := s.signUp(t, "payer@mamacare.test")

	status, body := s.do(t, http.MethodPost, "/api/payments", token, dto.CreatePaymentRequest{})
	require.Equal(t, http.StatusCreated, status, string(body))
	var payment dto.PaymentResponse
	decode(t, body, &payment)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, int64(500), payment.Amount)
	assert.True(t, strings.HasPrefix(payment.Reference, "MAMACARE_"))

	notification := map[string]interface{}{
		"reference":      payment.Reference,
		"transaction_id": "TXN-1",
		"status":         "SUCCESS",
		"amount":         500,
	}
	secret := header{key: "Authorization", value: webhookSecret}

	status, _ = s.do(t, http.MethodPost, "/api/webhooks/payments", "", notification)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = s.do(t, http.MethodPost, "/api/webhooks/payments", "", notification, secret)
	require.Equal(t, http.StatusOK, status, string(body))
	var ack dto.WebhookAck
	decode(t, body, &ack)
	assert.True(t, ack.Applied)
	assert.Equal(t, models.PaymentCompleted, ack.Status)

	status, body = s.do(t, http.MethodPost, "/api/webhooks/payments", "", notification, secret)
	require.Equal(t, http.StatusOK, status)
	decode(t, body, &ack)
	assert.False(t, ack.Applied)

	status, _ = s.do(t, http.MethodPost, "/api/webhooks/payments", "", map[string]interface{}{
		"reference": "MAMACARE_0_missing", "status": "success",
	}, secret)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, http.MethodGet, "/api/subscription", token, nil)
	require.Equal(t, http.StatusOK, status)
	var sub models.Subscription
	decode(t, body, &sub)
	assert.Equal(t, models.PlanPremium, sub.PlanType)
	assert.Equal(t, payment.Reference, sub.PaymentReference)

	status, body = s.do(t, http.MethodGet, "/api/payments", token, nil)
	require.Equal(t, http.StatusOK, status)
	var history []dto.PaymentResponse
	decode(t, body, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "TXN-1", history[0].TransactionID)
}

func TestPaymentGatewayFailure(t *testing.T) {
	s := newServer(t)
	token := s.signUp(t, "offline@mamacare.test")
	s.payments.err = errors.New("gateway down")

	status, body := s.do(t, http.MethodPost, "/api/payments", token, dto.CreatePaymentRequest{PhoneNumber: "+254799999999"})
	require.Equal(t, http.StatusBadGateway, status, string(body))
	var resp struct {
		Error   bool                `json:"error"`
		Payment dto.PaymentResponse `json:"payment"`
	}
	decode(t, body, &resp)
	assert.True(t, resp.Error)
	assert.Equal(t, models.PaymentPending, resp.Payment.Status)
	assert.Empty(t, resp.Payment.TransactionID)
}

func TestWebhookDisabledWithoutSecret(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.GatewayWebhookSecret = "" })

	status, _ := s.do(t, http.MethodPost, "/api/webhooks/payments", "", map[string]string{"reference": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)
	user := s.signUp(t, "reader@mamacare.test")
	admin := s.signUp(t, "admin@mamacare.test")

	item := dto.ContentItem{Title: "Staying hydrated", Content: "Drink water.", ContentType: models.ContentNutrition, Trimester: 1}

	status, _ := s.do(t, http.MethodPost, "/api/admin/content", user, item)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.do(t, http.MethodPost, "/api/admin/content", admin, item)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = s.do(t, http.MethodPost, "/api/admin/content", admin, item)
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(t, http.MethodGet, "/api/content?trimester=1", user, nil)
	require.Equal(t, http.StatusOK, status)
	var items []models.HealthContent
	decode(t, body, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Staying hydrated", items[0].Title)

	status, _ = s.do(t, http.MethodPost, "/api/admin/payments/MAMACARE_0_unknown/refund", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLocalDashboardIsPublic(t *testing.T) {
	s := newServer(t)

	status, body := s.do(t, http.MethodPost, "/api/dashboard/local", "", map[string]interface{}{
		"lastPeriod": daysAgo(100),
		"hospital":   "Pumwani",
		"emergencyContacts": []map[string]interface{}{
			{"name": "Juma", "phone": "+254722222222"},
			{"name": "Amina", "phone": "+254711111111", "isPrimary": true},
		},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var view dto.DashboardView
	decode(t, body, &view)
	assert.Equal(t, "local", view.Source)
	assert.Nil(t, view.User)
	assert.Equal(t, 15, view.Timeline.CurrentWeek)
	require.Len(t, view.EmergencyContacts, 2)
	assert.Equal(t, "Amina", view.EmergencyContacts[0].Name)

	status, _ = s.do(t, http.MethodPost, "/api/dashboard/local", "", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)
}
