package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileRequest struct {
	LastMenstrualPeriod string `json:"last_menstrual_period"`
	DueDate             string `json:"due_date"`
	Hospital            string `json:"hospital"`
	PreviousPregnancies int    `json:"previous_pregnancies"`
	RemindAppointments  *bool  `json:"remind_appointments"`
	RemindSupplements   *bool  `json:"remind_supplements"`
}

type UpdateDatesRequest struct {
	LastMenstrualPeriod string `json:"last_menstrual_period"`
	DueDate             string `json:"due_date"`
}

type CreateReminderRequest struct {
	ProfileID   *uuid.UUID `json:"profile_id"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Priority    string     `json:"priority"`
}

type RescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

type ContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
	IsPrimary    bool   `json:"is_primary"`
}

type SymptomRequest struct {
	ProfileID   *uuid.UUID `json:"profile_id"`
	Symptom     string     `json:"symptom"`
	Severity    string     `json:"severity"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
}
