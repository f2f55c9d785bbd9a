package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/owner"
)

// ContactService manages emergency contacts. An owner has at most one
// primary contact at any time.
type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

func (s *ContactService) Create(ctx context.Context, ownerID uuid.UUID, req *dto.ContactRequest) (*models.EmergencyContact, error) {
	if err := owner.Require(ownerID); err != nil {
		return nil, err
	}
	contact := models.EmergencyContact{OwnerID: ownerID}
	if err := applyContactFields(&contact, req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.EmergencyContact{}).Scopes(owner.ForOwner(ownerID)).Count(&count).Error; err != nil {
			return err
		}
		contact.IsPrimary = req.IsPrimary || count == 0
		if contact.IsPrimary {
			if err := demoteAll(tx, ownerID); err != nil {
				return err
			}
		}
		return tx.Create(&contact).Error
	})
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: primary contact changed concurrently", errs.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return &contact, nil
}

// Update edits a contact. Setting is_primary promotes it; clearing it on the
// current primary is ignored so the owner keeps a primary contact.
func (s *ContactService) Update(ctx context.Context, ownerID, contactID uuid.UUID, req *dto.ContactRequest) (*models.EmergencyContact, error) {
	contact, err := s.loadOwned(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}
	if err := applyContactFields(contact, req); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsPrimary && !contact.IsPrimary {
			if err := demoteAll(tx, ownerID); err != nil {
				return err
			}
			contact.IsPrimary = true
		}
		return tx.Model(contact).Select("name", "phone", "relationship", "is_primary").Updates(contact).Error
	})
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: primary contact changed concurrently", errs.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

// Delete removes a contact. Deleting the primary promotes the oldest
// remaining contact.
func (s *ContactService) Delete(ctx context.Context, ownerID, contactID uuid.UUID) error {
	contact, err := s.loadOwned(ctx, ownerID, contactID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(contact).Error; err != nil {
			return fmt.Errorf("delete contact: %w", err)
		}
		if !contact.IsPrimary {
			return nil
		}

		var next models.EmergencyContact
		found, err := findOne(tx.Scopes(owner.ForOwner(ownerID)).Order("created_at ASC"), &next)
		if err != nil || !found {
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
}

func (s *ContactService) List(ctx context.Context, ownerID uuid.UUID) ([]models.EmergencyContact, error) {
	contacts := []models.EmergencyContact{}
	err := s.db.WithContext(ctx).
		Scopes(owner.ForOwner(ownerID)).
		Order("is_primary DESC, created_at ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Promote makes the contact the owner's only primary.
func (s *ContactService) Promote(ctx context.Context, ownerID, contactID uuid.UUID) (*models.EmergencyContact, error) {
	contact, err := s.loadOwned(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}
	if contact.IsPrimary {
		return contact, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := demoteAll(tx, ownerID); err != nil {
			return err
		}
		return tx.Model(&models.EmergencyContact{}).
			Where("id = ?", contact.ID).
			Update("is_primary", true).Error
	})
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: primary contact changed concurrently", errs.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("promote contact: %w", err)
	}
	contact.IsPrimary = true
	return contact, nil
}

func (s *ContactService) loadOwned(ctx context.Context, ownerID, contactID uuid.UUID) (*models.EmergencyContact, error) {
	var contact models.EmergencyContact
	found, err := findOne(s.db.WithContext(ctx).Where("id = ?", contactID), &contact)
	if err != nil {
		return nil, fmt.Errorf("load contact: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: emergency contact", errs.ErrNotFound)
	}
	if contact.OwnerID != ownerID {
		return nil, errs.ErrNotOwned
	}
	return &contact, nil
}

func demoteAll(tx *gorm.DB, ownerID uuid.UUID) error {
	return tx.Model(&models.EmergencyContact{}).
		Scopes(owner.ForOwner(ownerID)).
		Where("is_primary = ?", true).
		Update("is_primary", false).Error
}

func applyContactFields(contact *models.EmergencyContact, req *dto.ContactRequest) error {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return fmt.Errorf("%w: name and phone are required", errs.ErrInvalidInput)
	}
	contact.Name = name
	contact.Phone = phone
	contact.Relationship = strings.TrimSpace(req.Relationship)
	return nil
}
