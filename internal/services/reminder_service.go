package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/timeline"
)

// upcomingOrder is the SQL form of reminderLess.
const upcomingOrder = "scheduled_at ASC, CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, created_at ASC"

type ReminderService struct {
	db *gorm.DB
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{db: db}
}

// SeedReminders inserts the planned milestone reminders the profile does not
// have yet and returns the inserted rows.
func (s *ReminderService) SeedReminders(ctx context.Context, profile *models.PregnancyProfile, now time.Time) ([]models.Reminder, error) {
	return seedReminders(s.db.WithContext(ctx), profile, now)
}

func seedReminders(db *gorm.DB, profile *models.PregnancyProfile, now time.Time) ([]models.Reminder, error) {
	now = now.UTC()
	tl, err := timeline.Compute(profile.LastMenstrualPeriod, profile.DueDate, now)
	if err != nil {
		return nil, err
	}
	planned := PlanReminders(tl, ReminderPrefs{
		Appointments: profile.RemindAppointments,
		Supplements:  profile.RemindSupplements,
	}, now)
	if len(planned) == 0 {
		return nil, nil
	}

	var existing []string
	if err := db.Model(&models.Reminder{}).
		Where("profile_id = ? AND milestone_key <> ''", profile.ID).
		Pluck("milestone_key", &existing).Error; err != nil {
		return nil, fmt.Errorf("load seeded reminders: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, key := range existing {
		have[key] = true
	}

	missing := make([]models.Reminder, 0, len(planned))
	for _, r := range planned {
		if have[r.MilestoneKey] {
			continue
		}
		r.OwnerID = profile.OwnerID
		r.ProfileID = profile.ID
		// Distinct creation stamps keep the tie-break stable.
		r.CreatedAt = now.Add(time.Duration(len(missing)) * time.Microsecond)
		r.UpdatedAt = r.CreatedAt
		missing = append(missing, r)
	}
	if len(missing) == 0 {
		return nil, nil
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&missing).Error; err != nil {
		return nil, fmt.Errorf("seed reminders: %w", err)
	}
	return missing, nil
}

// ListUpcoming returns open reminders scheduled at or after now.
func (s *ReminderService) ListUpcoming(ctx context.Context, ownerID uuid.UUID, profileID *uuid.UUID, now time.Time, limit int) ([]models.Reminder, error) {
	now = now.UTC()
	query := s.db.WithContext(ctx).
		Scopes(owner.ForOwner(ownerID)).
		Where("completed = ? AND scheduled_at >= ?", false, now)
	if profileID != nil {
		query = query.Where("profile_id = ?", *profileID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	reminders := []models.Reminder{}
	if err := query.Order(upcomingOrder).Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list upcoming reminders: %w", err)
	}
	return reminders, nil
}

func (s *ReminderService) List(ctx context.Context, ownerID uuid.UUID, profileID *uuid.UUID) ([]models.Reminder, error) {
	query := s.db.WithContext(ctx).Scopes(owner.ForOwner(ownerID))
	if profileID != nil {
		query = query.Where("profile_id = ?", *profileID)
	}

	reminders := []models.Reminder{}
	if err := query.Order("scheduled_at ASC, created_at ASC").Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// CreateCustom adds a user reminder to the given profile, or to the active
// one when no profile is named.
func (s *ReminderService) CreateCustom(ctx context.Context, ownerID uuid.UUID, req *dto.CreateReminderRequest) (*models.Reminder, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
	}
	if req.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_at is required", errs.ErrInvalidInput)
	}
	kind := req.Kind
	if kind == "" {
		kind = models.ReminderCustom
	}
	if !models.IsValidReminderKind(kind) {
		return nil, fmt.Errorf("%w: unknown reminder kind %q", errs.ErrInvalidInput, kind)
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidPriority(priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", errs.ErrInvalidInput, priority)
	}

	db := s.db.WithContext(ctx)
	var profile models.PregnancyProfile
	var found bool
	var err error
	if req.ProfileID != nil {
		found, err = findOne(db.Where("id = ?", *req.ProfileID), &profile)
	} else {
		found, err = findOne(db.Scopes(owner.ForOwner(ownerID)).Where("is_active = ?", true), &profile)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: pregnancy profile", errs.ErrNotFound)
	}
	if profile.OwnerID != ownerID {
		return nil, errs.ErrNotOwned
	}

	reminder := models.Reminder{
		OwnerID:     ownerID,
		ProfileID:   profile.ID,
		Kind:        kind,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		ScheduledAt: req.ScheduledAt.UTC(),
		Priority:    priority,
	}
	if err := db.Create(&reminder).Error; err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return &reminder, nil
}

// Complete marks a reminder done. Completing it again returns the stored
// reminder with errs.ErrAlreadyCompleted.
func (s *ReminderService) Complete(ctx context.Context, ownerID, reminderID uuid.UUID, now time.Time) (*models.Reminder, error) {
	now = now.UTC()
	reminder, err := s.loadOwned(ctx, ownerID, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.Completed {
		return reminder, errs.ErrAlreadyCompleted
	}

	result := s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ? AND completed = ?", reminderID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("complete reminder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost the race to another completion.
		current, err := s.loadOwned(ctx, ownerID, reminderID)
		if err != nil {
			return nil, err
		}
		return current, errs.ErrAlreadyCompleted
	}

	reminder.Completed = true
	reminder.CompletedAt = &now
	reminder.UpdatedAt = now
	return reminder, nil
}

// Reschedule moves an open reminder to a new time.
func (s *ReminderService) Reschedule(ctx context.Context, ownerID, reminderID uuid.UUID, scheduledAt time.Time) (*models.Reminder, error) {
	if scheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_at is required", errs.ErrInvalidInput)
	}
	reminder, err := s.loadOwned(ctx, ownerID, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.Completed {
		return nil, fmt.Errorf("%w: reminder already completed", errs.ErrInvalidState)
	}

	scheduledAt = scheduledAt.UTC()
	result := s.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("id = ? AND completed = ?", reminderID, false).
		Update("scheduled_at", scheduledAt)
	if result.Error != nil {
		return nil, fmt.Errorf("reschedule reminder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: reminder already completed", errs.ErrInvalidState)
	}

	reminder.ScheduledAt = scheduledAt
	return reminder, nil
}

func (s *ReminderService) loadOwned(ctx context.Context, ownerID, reminderID uuid.UUID) (*models.Reminder, error) {
	var reminder models.Reminder
	found, err := findOne(s.db.WithContext(ctx).Where("id = ?", reminderID), &reminder)
	if err != nil {
		return nil, fmt.Errorf("load reminder: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: reminder", errs.ErrNotFound)
	}
	if reminder.OwnerID != ownerID {
		return nil, errs.ErrNotOwned
	}
	return &reminder, nil
}
