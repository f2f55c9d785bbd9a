package models

import (
	"time"

	"github.com/google/uuid"
)

// PregnancyProfile is one tracked pregnancy. CurrentWeek, Trimester and the
// resolved DueDate are derived from the reference dates and are only written
// together with them.
type PregnancyProfile struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID             uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_profiles_owner_active,where:is_active = true" json:"owner_id"`
	LastMenstrualPeriod *time.Time `json:"last_menstrual_period,omitempty"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	CurrentWeek         int        `gorm:"not null" json:"current_week"`
	Trimester           int        `gorm:"not null" json:"trimester"`
	IsActive            bool       `gorm:"not null;index" json:"is_active"`
	Hospital            string     `gorm:"size:255" json:"hospital"`
	PreviousPregnancies int        `json:"previous_pregnancies"`
	RemindAppointments  bool       `gorm:"not null" json:"remind_appointments"`
	RemindSupplements   bool       `gorm:"not null" json:"remind_supplements"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
