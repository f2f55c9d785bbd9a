package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
)

// Notifier delivers a text message without blocking the caller.
type Notifier interface {
	Notify(phone, text string)
}

// NotificationService sends SMS through the gateway. Sends run in the
// background with their own timeout; failures are logged and counted.
type NotificationService struct {
	db      *gorm.DB
	sender  gateway.SMSSender
	enabled bool
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotificationService(db *gorm.DB, sender gateway.SMSSender, enabled bool, timeout time.Duration) *NotificationService {
	return &NotificationService{db: db, sender: sender, enabled: enabled, timeout: timeout}
}

func (n *NotificationService) Notify(phone, text string) {
	if !n.enabled || phone == "" {
		metrics.SMSSent.WithLabelValues("skipped").Inc()
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		_ = n.send(context.Background(), phone, text)
	}()
}

// Wait blocks until in-flight sends finish.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func (n *NotificationService) send(ctx context.Context, phone, text string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.sender.SendSMS(ctx, gateway.SMSRequest{PhoneNumber: phone, Message: text}); err != nil {
		metrics.SMSSent.WithLabelValues("failed").Inc()
		slog.Warn("sms delivery failed", "error", err)
		return err
	}
	metrics.SMSSent.WithLabelValues("sent").Inc()
	return nil
}

// SendDueReminders texts owners about open reminders scheduled within the
// window after now. Each reminder is claimed with a conditional UPDATE so
// concurrent sweeps never text twice.
func (n *NotificationService) SendDueReminders(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	if !n.enabled {
		return 0, nil
	}
	now = now.UTC()

	type dueReminder struct {
		models.Reminder
		Phone string
	}
	var due []dueReminder
	err := n.db.WithContext(ctx).
		Table("reminders").
		Select("reminders.*, users.phone AS phone").
		Joins("JOIN users ON users.id = reminders.owner_id").
		Where("reminders.completed = ? AND reminders.notified_at IS NULL", false).
		Where("reminders.scheduled_at >= ? AND reminders.scheduled_at < ?", now, now.Add(window)).
		Where("users.phone <> ''").
		Order("reminders.scheduled_at ASC").
		Scan(&due).Error
	if err != nil {
		return 0, fmt.Errorf("load due reminders: %w", err)
	}

	sent := 0
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		claim := n.db.WithContext(ctx).Model(&models.Reminder{}).
			Where("id = ? AND notified_at IS NULL", r.ID).
			Update("notified_at", now)
		if claim.Error != nil {
			return sent, fmt.Errorf("claim reminder: %w", claim.Error)
		}
		if claim.RowsAffected == 0 {
			continue
		}

		text := fmt.Sprintf("MamaCare reminder: %s on %s.", r.Title, r.ScheduledAt.Format("Mon 2 Jan 15:04"))
		if err := n.send(ctx, r.Phone, text); err != nil {
			// Release the claim so the next sweep retries, even when the
			// sweep itself was cancelled mid-send.
			release := n.db.WithContext(context.WithoutCancel(ctx)).Model(&models.Reminder{}).
				Where("id = ?", r.ID).
				Update("notified_at", nil)
			if release.Error != nil {
				slog.Error("release reminder claim failed",
					"reminder_id", r.ID.String(),
					"action", "reminder_notify",
					"error", release.Error,
				)
			}
			continue
		}
		sent++
	}
	return sent, nil
}
