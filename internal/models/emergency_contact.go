package models

import (
	"time"

	"github.com/google/uuid"
)

type EmergencyContact struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_contacts_owner_primary,where:is_primary = true" json:"owner_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Phone        string    `gorm:"size:32;not null" json:"phone"`
	Relationship string    `gorm:"size:64" json:"relationship"`
	IsPrimary    bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
