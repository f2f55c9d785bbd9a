package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReminderClinicVisit  = "clinic_visit"
	ReminderSupplement   = "supplement"
	ReminderVaccination  = "vaccination"
	ReminderUltrasound   = "ultrasound"
	ReminderDeliveryPrep = "delivery_prep"
	ReminderCustom       = "custom"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Reminder is scheduled data tied to a profile. MilestoneKey is empty for
// user-created reminders and unique per profile otherwise.
type Reminder struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	ProfileID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reminders_profile_milestone,where:milestone_key <> ''" json:"profile_id"`
	MilestoneKey string     `gorm:"size:64;not null;default:'';uniqueIndex:idx_reminders_profile_milestone,where:milestone_key <> ''" json:"milestone_key,omitempty"`
	Kind         string     `gorm:"size:32;not null" json:"kind"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	ScheduledAt  time.Time  `gorm:"not null;index" json:"scheduled_at"`
	Priority     string     `gorm:"size:10;not null" json:"priority"`
	Completed    bool       `gorm:"not null;default:false;index" json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	NotifiedAt   *time.Time `gorm:"index" json:"notified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PriorityRank orders priorities high > medium > low.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

func IsValidPriority(priority string) bool {
	return priority == PriorityLow || priority == PriorityMedium || priority == PriorityHigh
}

func IsValidReminderKind(kind string) bool {
	switch kind {
	case ReminderClinicVisit, ReminderSupplement, ReminderVaccination, ReminderUltrasound, ReminderDeliveryPrep, ReminderCustom:
		return true
	}
	return false
}
