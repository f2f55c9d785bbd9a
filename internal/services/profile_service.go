package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/timeline"
)

type ProfileService struct {
	db        *gorm.DB
	reminders *ReminderService
}

func NewProfileService(db *gorm.DB, reminders *ReminderService) *ProfileService {
	return &ProfileService{db: db, reminders: reminders}
}

// CreateProfile starts tracking a new pregnancy. Any previous active profile
// is deactivated in the same transaction.
func (s *ProfileService) CreateProfile(ctx context.Context, ownerID uuid.UUID, req *dto.ProfileRequest, now time.Time) (*models.PregnancyProfile, error) {
	if err := owner.Require(ownerID); err != nil {
		return nil, err
	}
	now = now.UTC()

	lmp, err := dto.ParseDate(req.LastMenstrualPeriod)
	if err != nil {
		return nil, err
	}
	due, err := dto.ParseDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	tl, err := timeline.Compute(lmp, due, now)
	if err != nil {
		return nil, err
	}
	if req.PreviousPregnancies < 0 {
		return nil, fmt.Errorf("%w: previous_pregnancies must not be negative", errs.ErrInvalidInput)
	}

	profile := models.PregnancyProfile{
		OwnerID:             ownerID,
		LastMenstrualPeriod: referenceDate(lmp),
		DueDate:             &tl.DueDate,
		CurrentWeek:         tl.CurrentWeek,
		Trimester:           tl.Trimester,
		IsActive:            true,
		Hospital:            strings.TrimSpace(req.Hospital),
		PreviousPregnancies: req.PreviousPregnancies,
		RemindAppointments:  boolOr(req.RemindAppointments, true),
		RemindSupplements:   boolOr(req.RemindSupplements, true),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PregnancyProfile{}).
			Scopes(owner.ForOwner(ownerID)).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&profile).Error
	})
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: another profile was activated concurrently", errs.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	if _, err := s.reminders.SeedReminders(ctx, &profile, now); err != nil {
		slog.Error("reminder seeding failed", "owner_id", ownerID.String(), "profile_id", profile.ID.String(), "error", err)
	}
	return &profile, nil
}

// UpdateDates replaces the reference dates and derived fields in a single
// UPDATE, drops open seeded reminders planned from the old dates and
// re-seeds.
func (s *ProfileService) UpdateDates(ctx context.Context, ownerID uuid.UUID, req *dto.UpdateDatesRequest, now time.Time) (*models.PregnancyProfile, error) {
	now = now.UTC()

	lmp, err := dto.ParseDate(req.LastMenstrualPeriod)
	if err != nil {
		return nil, err
	}
	due, err := dto.ParseDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	tl, err := timeline.Compute(lmp, due, now)
	if err != nil {
		return nil, err
	}

	profile, err := s.loadActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"last_menstrual_period": referenceDate(lmp),
		"due_date":              tl.DueDate,
		"current_week":          tl.CurrentWeek,
		"trimester":             tl.Trimester,
		"updated_at":            now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PregnancyProfile{}).
			Where("id = ? AND is_active = ?", profile.ID, true).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: profile is no longer active", errs.ErrConflict)
		}
		return tx.Where("profile_id = ? AND milestone_key <> '' AND completed = ?", profile.ID, false).
			Delete(&models.Reminder{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update profile dates: %w", err)
	}

	profile.LastMenstrualPeriod = referenceDate(lmp)
	profile.DueDate = &tl.DueDate
	profile.CurrentWeek = tl.CurrentWeek
	profile.Trimester = tl.Trimester
	profile.UpdatedAt = now

	if _, err := s.reminders.SeedReminders(ctx, profile, now); err != nil {
		slog.Error("reminder seeding failed", "owner_id", ownerID.String(), "profile_id", profile.ID.String(), "error", err)
	}
	return profile, nil
}

// GetActive returns the active profile, refreshing the stored week and
// trimester when they have gone stale.
func (s *ProfileService) GetActive(ctx context.Context, ownerID uuid.UUID, now time.Time) (*models.PregnancyProfile, error) {
	now = now.UTC()
	profile, err := s.loadActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	tl, err := timeline.Compute(profile.LastMenstrualPeriod, profile.DueDate, now)
	if err != nil {
		return nil, err
	}
	if tl.CurrentWeek == profile.CurrentWeek && tl.Trimester == profile.Trimester {
		return profile, nil
	}

	result := s.db.WithContext(ctx).Model(&models.PregnancyProfile{}).
		Where("id = ? AND current_week = ?", profile.ID, profile.CurrentWeek).
		Updates(map[string]interface{}{
			"current_week": tl.CurrentWeek,
			"trimester":    tl.Trimester,
			"updated_at":   now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("refresh profile: %w", result.Error)
	}
	profile.CurrentWeek = tl.CurrentWeek
	profile.Trimester = tl.Trimester

	if result.RowsAffected > 0 {
		if _, err := s.reminders.SeedReminders(ctx, profile, now); err != nil {
			slog.Error("reminder seeding failed", "owner_id", ownerID.String(), "profile_id", profile.ID.String(), "error", err)
		}
	}
	return profile, nil
}

// FindActive is the read-only lookup used by the dashboard. It returns nil
// without error when the owner has no active profile.
func (s *ProfileService) FindActive(ctx context.Context, ownerID uuid.UUID, now time.Time) (*models.PregnancyProfile, *timeline.Result, error) {
	var profile models.PregnancyProfile
	found, err := findOne(s.db.WithContext(ctx).Scopes(owner.ForOwner(ownerID)).Where("is_active = ?", true), &profile)
	if err != nil {
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return nil, nil, nil
	}

	tl, err := timeline.Compute(profile.LastMenstrualPeriod, profile.DueDate, now)
	if err != nil {
		return &profile, nil, err
	}
	profile.CurrentWeek = tl.CurrentWeek
	profile.Trimester = tl.Trimester
	return &profile, &tl, nil
}

func (s *ProfileService) loadActive(ctx context.Context, ownerID uuid.UUID) (*models.PregnancyProfile, error) {
	var profile models.PregnancyProfile
	found, err := findOne(s.db.WithContext(ctx).Scopes(owner.ForOwner(ownerID)).Where("is_active = ?", true), &profile)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: no active pregnancy profile", errs.ErrNotFound)
	}
	return &profile, nil
}

func referenceDate(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	day := timeline.Day(*value)
	return &day
}
