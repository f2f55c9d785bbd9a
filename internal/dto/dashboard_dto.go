package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/timeline"
)

// LocalSetup is the onboarding payload a client keeps on the device before
// creating an account.
type LocalSetup struct {
	LastPeriod        string         `json:"lastPeriod"`
	DueDate           string         `json:"dueDate"`
	Hospital          string         `json:"hospital"`
	EmergencyContacts []LocalContact `json:"emergencyContacts"`
	Preferences       struct {
		AppointmentReminders *bool `json:"appointmentReminders"`
		MedicationReminders  *bool `json:"medicationReminders"`
	} `json:"preferences"`
}

type LocalContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	IsPrimary    bool   `json:"isPrimary"`
}

type DashboardView struct {
	Source             string                    `json:"source"`
	User               *UserResponse             `json:"user,omitempty"`
	Profile            *models.PregnancyProfile  `json:"profile"`
	Timeline           *timeline.Result          `json:"timeline"`
	Hospital           string                    `json:"hospital,omitempty"`
	UpcomingReminders  []models.Reminder         `json:"upcoming_reminders"`
	RecentSymptoms     []models.SymptomLog       `json:"recent_symptoms"`
	RecommendedContent []models.HealthContent    `json:"recommended_content"`
	EmergencyContacts  []models.EmergencyContact `json:"emergency_contacts"`
	Subscription       models.Subscription       `json:"subscription"`
	GeneratedAt        time.Time                 `json:"generated_at"`
}
