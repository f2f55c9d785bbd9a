package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
)

const defaultSymptomLimit = 50

type SymptomService struct {
	db *gorm.DB
}

func NewSymptomService(db *gorm.DB) *SymptomService {
	return &SymptomService{db: db}
}

// Log records a symptom. Without an explicit profile it is attached to the
// owner's active profile, if any.
func (s *SymptomService) Log(ctx context.Context, ownerID uuid.UUID, req *dto.SymptomRequest, now time.Time) (*models.SymptomLog, error) {
	if err := owner.Require(ownerID); err != nil {
		return nil, err
	}
	entry := models.SymptomLog{OwnerID: ownerID, Date: now.UTC()}
	if err := applySymptomFields(&entry, req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var profile models.PregnancyProfile
	var found bool
	var err error
	if req.ProfileID != nil {
		found, err = findOne(db.Where("id = ?", *req.ProfileID), &profile)
		if err == nil && !found {
			return nil, fmt.Errorf("%w: pregnancy profile", errs.ErrNotFound)
		}
	} else {
		found, err = findOne(db.Scopes(owner.ForOwner(ownerID)).Where("is_active = ?", true), &profile)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if found {
		if profile.OwnerID != ownerID {
			return nil, errs.ErrNotOwned
		}
		entry.ProfileID = &profile.ID
	}

	if err := db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("log symptom: %w", err)
	}
	return &entry, nil
}

// List returns the most recent symptoms first.
func (s *SymptomService) List(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.SymptomLog, error) {
	if limit <= 0 {
		limit = defaultSymptomLimit
	}
	symptoms := []models.SymptomLog{}
	err := s.db.WithContext(ctx).
		Scopes(owner.ForOwner(ownerID)).
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&symptoms).Error
	if err != nil {
		return nil, fmt.Errorf("list symptoms: %w", err)
	}
	return symptoms, nil
}

func (s *SymptomService) Update(ctx context.Context, ownerID, symptomID uuid.UUID, req *dto.SymptomRequest) (*models.SymptomLog, error) {
	entry, err := s.loadOwned(ctx, ownerID, symptomID)
	if err != nil {
		return nil, err
	}
	if err := applySymptomFields(entry, req); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(entry).
		Select("symptom", "severity", "description", "date").
		Updates(entry).Error; err != nil {
		return nil, fmt.Errorf("update symptom: %w", err)
	}
	return entry, nil
}

// Resolve marks a symptom resolved; resolved and resolved_at change together.
func (s *SymptomService) Resolve(ctx context.Context, ownerID, symptomID uuid.UUID, now time.Time) (*models.SymptomLog, error) {
	entry, err := s.loadOwned(ctx, ownerID, symptomID)
	if err != nil {
		return nil, err
	}
	now = now.UTC()

	result := s.db.WithContext(ctx).Model(&models.SymptomLog{}).
		Where("id = ? AND resolved = ?", symptomID, false).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": now, "updated_at": now})
	if result.Error != nil {
		return nil, fmt.Errorf("resolve symptom: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: symptom already resolved", errs.ErrInvalidState)
	}
	entry.Resolved = true
	entry.ResolvedAt = &now
	return entry, nil
}

func (s *SymptomService) loadOwned(ctx context.Context, ownerID, symptomID uuid.UUID) (*models.SymptomLog, error) {
	var entry models.SymptomLog
	found, err := findOne(s.db.WithContext(ctx).Where("id = ?", symptomID), &entry)
	if err != nil {
		return nil, fmt.Errorf("load symptom: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: symptom", errs.ErrNotFound)
	}
	if entry.OwnerID != ownerID {
		return nil, errs.ErrNotOwned
	}
	return &entry, nil
}

func applySymptomFields(entry *models.SymptomLog, req *dto.SymptomRequest) error {
	symptom := strings.TrimSpace(req.Symptom)
	if symptom == "" {
		return fmt.Errorf("%w: symptom is required", errs.ErrInvalidInput)
	}
	severity := strings.ToLower(strings.TrimSpace(req.Severity))
	if severity == "" {
		severity = models.SeverityMild
	}
	if !models.IsValidSeverity(severity) {
		return fmt.Errorf("%w: unknown severity %q", errs.ErrInvalidInput, req.Severity)
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return err
	}

	entry.Symptom = symptom
	entry.Severity = severity
	entry.Description = strings.TrimSpace(req.Description)
	if date != nil {
		entry.Date = *date
	}
	return nil
}
