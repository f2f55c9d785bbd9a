package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
)

const defaultPaymentDescription = "MamaCare Premium Subscription"

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// errNotApplied marks a transaction that lost the compare-and-swap.
var errNotApplied = errors.New("attempt no longer pending")

// ApplyResult reports what a gateway notification changed.
type ApplyResult struct {
	Applied      bool
	Attempt      *models.PaymentAttempt
	Subscription *models.Subscription
}

// SubscriptionService is the payment ledger. Attempts move
// pending -> completed|failed and completed -> refunded; a completed attempt
// activates or extends the owner's single active subscription.
type SubscriptionService struct {
	db       *gorm.DB
	cfg      *config.Config
	payments gateway.PaymentInitiator
	notifier Notifier
	now      func() time.Time
}

func NewSubscriptionService(db *gorm.DB, cfg *config.Config, payments gateway.PaymentInitiator, notifier Notifier) *SubscriptionService {
	return &SubscriptionService{
		db:       db,
		cfg:      cfg,
		payments: payments,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateAttempt records a pending attempt and asks the gateway to collect
// it. A gateway failure leaves the attempt pending without a transaction id
// and returns it alongside errs.ErrGateway.
func (s *SubscriptionService) CreateAttempt(ctx context.Context, ownerID uuid.UUID, amount int64, description, phone string) (*models.PaymentAttempt, error) {
	if err := owner.Require(ownerID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrInvalidInput)
	}
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if !phonePattern.MatchString(phone) {
		return nil, fmt.Errorf("%w: invalid phone number", errs.ErrInvalidInput)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = defaultPaymentDescription
	}

	reference, err := gateway.NewReference(s.now())
	if err != nil {
		return nil, err
	}

	attempt := models.PaymentAttempt{
		OwnerID:     ownerID,
		Reference:   reference,
		Amount:      amount,
		Currency:    s.cfg.PaymentCurrency,
		Description: description,
		Phone:       phone,
		Status:      models.PaymentPending,
	}
	if err := s.db.WithContext(ctx).Create(&attempt).Error; err != nil {
		return nil, fmt.Errorf("create payment attempt: %w", err)
	}
	metrics.PaymentAttempts.WithLabelValues(models.PaymentPending).Inc()

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout*time.Duration(s.cfg.GatewayMaxRetries+1))
	defer cancel()
	resp, err := s.payments.InitiatePayment(callCtx, gateway.PaymentRequest{
		Amount:      amount,
		Currency:    attempt.Currency,
		PhoneNumber: phone,
		Reference:   reference,
		Description: description,
		CallbackURL: s.cfg.GatewayCallbackURL,
	})
	if err != nil {
		slog.Error("payment initiation failed",
			"owner_id", ownerID.String(),
			"reference", reference,
			"action", "payment_initiate",
			"error", err,
		)
		if !errors.Is(err, errs.ErrGateway) {
			err = fmt.Errorf("%w: %v", errs.ErrGateway, err)
		}
		return &attempt, err
	}

	updates := map[string]interface{}{"checkout_url": resp.CheckoutURL}
	if resp.TransactionID != "" {
		updates["transaction_id"] = resp.TransactionID
	}
	if err := s.db.WithContext(ctx).Model(&models.PaymentAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, models.PaymentPending).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("store transaction id: %w", err)
	}
	if resp.TransactionID != "" {
		attempt.TransactionID = &resp.TransactionID
	}
	attempt.CheckoutURL = resp.CheckoutURL

	slog.Info("payment initiated", "owner_id", ownerID.String(), "reference", reference, "amount", amount)
	return &attempt, nil
}

// ApplyGatewayResult settles a pending attempt from a gateway notification.
// Redelivery of the same notification, or any notification for a settled
// attempt, changes nothing and reports Applied=false.
func (s *SubscriptionService) ApplyGatewayResult(ctx context.Context, n gateway.Notification) (*ApplyResult, error) {
	reference := strings.TrimSpace(n.Reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", errs.ErrInvalidInput)
	}

	var outcome string
	switch n.NormalizedStatus() {
	case gateway.StatusSuccess, gateway.StatusCompleted:
		outcome = models.PaymentCompleted
	case gateway.StatusFailed:
		outcome = models.PaymentFailed
	case gateway.StatusPending:
		outcome = models.PaymentPending
	default:
		return nil, fmt.Errorf("%w: unknown payment status %q", errs.ErrInvalidInput, n.Status)
	}

	attempt, err := s.loadAttempt(ctx, reference)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			metrics.GatewayNotifications.WithLabelValues("unknown").Inc()
		}
		return nil, err
	}

	if attempt.IsTerminal() || outcome == models.PaymentPending {
		label := "duplicate"
		if !attempt.IsTerminal() {
			label = "ignored"
		}
		metrics.GatewayNotifications.WithLabelValues(label).Inc()
		return s.currentState(ctx, attempt)
	}

	if n.Amount != 0 && n.Amount != attempt.Amount {
		slog.Warn("gateway amount differs from attempt",
			"reference", reference,
			"attempt_amount", attempt.Amount,
			"notified_amount", n.Amount,
		)
	}

	err = s.settle(ctx, attempt, outcome, n)
	if errors.Is(err, errs.ErrConflict) {
		// A concurrent settlement for the same owner created the active row
		// first; the retry finds it and extends it instead.
		err = s.settle(ctx, attempt, outcome, n)
	}
	if errors.Is(err, errNotApplied) {
		metrics.GatewayNotifications.WithLabelValues("duplicate").Inc()
		fresh, loadErr := s.loadAttempt(ctx, reference)
		if loadErr != nil {
			return nil, loadErr
		}
		return s.currentState(ctx, fresh)
	}
	if err != nil {
		return nil, err
	}

	metrics.GatewayNotifications.WithLabelValues("applied").Inc()
	metrics.PaymentAttempts.WithLabelValues(outcome).Inc()
	slog.Info("payment settled", "owner_id", attempt.OwnerID.String(), "reference", reference, "status", outcome)

	fresh, err := s.loadAttempt(ctx, reference)
	if err != nil {
		return nil, err
	}
	result, err := s.currentState(ctx, fresh)
	if err != nil {
		return nil, err
	}
	result.Applied = true

	if outcome == models.PaymentCompleted && s.notifier != nil {
		phone := attempt.Phone
		if phone == "" {
			phone = n.PhoneNumber
		}
		text := "Your MamaCare Premium subscription is active."
		if result.Subscription.EndDate != nil {
			text = fmt.Sprintf("Your MamaCare Premium subscription is active until %s.", result.Subscription.EndDate.Format("2 Jan 2006"))
		}
		s.notifier.Notify(phone, text)
	}
	return result, nil
}

// settle runs one compare-and-swap transaction for the attempt.
func (s *SubscriptionService) settle(ctx context.Context, attempt *models.PaymentAttempt, outcome string, n gateway.Notification) error {
	now := s.now()
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	updates := map[string]interface{}{
		"status":          outcome,
		"gateway_payload": datatypes.JSON(payload),
		"updated_at":      now,
	}
	if n.TransactionID != "" {
		updates["transaction_id"] = n.TransactionID
	}
	if outcome == models.PaymentCompleted {
		updates["completed_at"] = now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PaymentAttempt{}).
			Where("reference = ? AND status = ?", attempt.Reference, models.PaymentPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNotApplied
		}
		if outcome != models.PaymentCompleted {
			return nil
		}
		return s.activatePremium(tx, attempt, now)
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: active subscription created concurrently", errs.ErrConflict)
	}
	return err
}

// activatePremium updates the owner's active subscription in place or
// inserts one. Paying while premium extends the current period. The active
// row is locked so concurrent settlements for the same owner stack.
func (s *SubscriptionService) activatePremium(tx *gorm.DB, attempt *models.PaymentAttempt, now time.Time) error {
	period := s.cfg.PremiumPeriod

	var current models.Subscription
	found, err := findOne(tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(owner.ForOwner(attempt.OwnerID)).
		Where("status = ?", models.SubscriptionActive), &current)
	if err != nil {
		return err
	}

	if !found {
		end := now.Add(period)
		return tx.Create(&models.Subscription{
			OwnerID:          attempt.OwnerID,
			PlanType:         models.PlanPremium,
			Status:           models.SubscriptionActive,
			Amount:           attempt.Amount,
			Currency:         attempt.Currency,
			PaymentReference: attempt.Reference,
			StartDate:        now,
			EndDate:          &end,
		}).Error
	}

	start := current.StartDate
	end := now.Add(period)
	switch {
	case current.PlanType == models.PlanPremium && current.EndDate != nil && current.EndDate.After(now):
		end = current.EndDate.Add(period)
	default:
		start = now
	}

	return tx.Model(&models.Subscription{}).
		Where("id = ?", current.ID).
		Updates(map[string]interface{}{
			"plan_type":         models.PlanPremium,
			"amount":            attempt.Amount,
			"currency":          attempt.Currency,
			"payment_reference": attempt.Reference,
			"start_date":        start,
			"end_date":          end,
			"updated_at":        now,
		}).Error
}

// GetActiveSubscription returns the owner's active, unlapsed subscription or
// the free default.
func (s *SubscriptionService) GetActiveSubscription(ctx context.Context, ownerID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	found, err := findOne(s.db.WithContext(ctx).
		Scopes(owner.ForOwner(ownerID)).
		Where("status = ?", models.SubscriptionActive).
		Where("(end_date IS NULL OR end_date >= ?)", s.now()), &sub)
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if !found {
		return s.freeSubscription(ownerID), nil
	}
	return &sub, nil
}

func (s *SubscriptionService) freeSubscription(ownerID uuid.UUID) *models.Subscription {
	return &models.Subscription{
		OwnerID:  ownerID,
		PlanType: models.PlanFree,
		Status:   models.SubscriptionActive,
		Currency: s.cfg.PaymentCurrency,
	}
}

// IsPremium reports whether the owner currently holds premium access.
func (s *SubscriptionService) IsPremium(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	sub, err := s.GetActiveSubscription(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return sub.PlanType == models.PlanPremium, nil
}

// Refund moves a completed attempt to refunded and cancels the active
// subscription it paid for.
func (s *SubscriptionService) Refund(ctx context.Context, reference string) (*models.PaymentAttempt, error) {
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PaymentAttempt{}).
			Where("reference = ? AND status = ?", reference, models.PaymentCompleted).
			Updates(map[string]interface{}{"status": models.PaymentRefunded, "updated_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNotApplied
		}
		return tx.Model(&models.Subscription{}).
			Where("payment_reference = ? AND status = ?", reference, models.SubscriptionActive).
			Updates(map[string]interface{}{"status": models.SubscriptionCancelled, "updated_at": now}).Error
	})

	if errors.Is(err, errNotApplied) {
		attempt, loadErr := s.loadAttempt(ctx, reference)
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, fmt.Errorf("%w: cannot refund a %s payment", errs.ErrInvalidState, attempt.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("refund payment: %w", err)
	}

	metrics.PaymentAttempts.WithLabelValues(models.PaymentRefunded).Inc()
	slog.Info("payment refunded", "reference", reference)
	return s.loadAttempt(ctx, reference)
}

// Cancel ends the owner's active subscription. A lapsed subscription already
// reads as free and cannot be cancelled.
func (s *SubscriptionService) Cancel(ctx context.Context, ownerID uuid.UUID) (*models.Subscription, error) {
	now := s.now()
	var sub models.Subscription
	found, err := findOne(s.db.WithContext(ctx).
		Scopes(owner.ForOwner(ownerID)).
		Where("status = ?", models.SubscriptionActive).
		Where("(end_date IS NULL OR end_date >= ?)", now), &sub)
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: no active subscription", errs.ErrNotFound)
	}

	result := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, models.SubscriptionActive).
		Updates(map[string]interface{}{"status": models.SubscriptionCancelled, "updated_at": now})
	if result.Error != nil {
		return nil, fmt.Errorf("cancel subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: subscription changed concurrently", errs.ErrConflict)
	}
	sub.Status = models.SubscriptionCancelled
	sub.UpdatedAt = now
	return &sub, nil
}

// ExpireLapsed marks active subscriptions whose end date has passed as
// expired and returns how many changed.
func (s *SubscriptionService) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", models.SubscriptionActive, now.UTC()).
		Updates(map[string]interface{}{"status": models.SubscriptionExpired, "updated_at": now.UTC()})
	if result.Error != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		slog.Info("subscriptions expired", "count", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// ListAttempts returns the owner's payment history, newest first.
func (s *SubscriptionService) ListAttempts(ctx context.Context, ownerID uuid.UUID) ([]models.PaymentAttempt, error) {
	attempts := []models.PaymentAttempt{}
	err := s.db.WithContext(ctx).
		Scopes(owner.ForOwner(ownerID)).
		Order("created_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return attempts, nil
}

func (s *SubscriptionService) loadAttempt(ctx context.Context, reference string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	found, err := findOne(s.db.WithContext(ctx).Where("reference = ?", reference), &attempt)
	if err != nil {
		return nil, fmt.Errorf("load payment attempt: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: payment %s", errs.ErrNotFound, reference)
	}
	return &attempt, nil
}

func (s *SubscriptionService) currentState(ctx context.Context, attempt *models.PaymentAttempt) (*ApplyResult, error) {
	sub, err := s.GetActiveSubscription(ctx, attempt.OwnerID)
	if err != nil {
		return nil, err
	}
	return &ApplyResult{Attempt: attempt, Subscription: sub}, nil
}
