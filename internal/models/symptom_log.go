package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

type SymptomLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	ProfileID   *uuid.UUID `gorm:"type:uuid;index" json:"profile_id,omitempty"`
	Symptom     string     `gorm:"size:255;not null" json:"symptom"`
	Severity    string     `gorm:"size:16;not null" json:"severity"`
	Description string     `gorm:"type:text" json:"description"`
	Date        time.Time  `gorm:"not null;index" json:"date"`
	Resolved    bool       `gorm:"not null;default:false" json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func IsValidSeverity(severity string) bool {
	return severity == SeverityMild || severity == SeverityModerate || severity == SeveritySevere
}
