package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ContentNutrition    = "nutrition"
	ContentExercise     = "exercise"
	ContentMentalHealth = "mental_health"
	ContentGeneral      = "general"
	ContentEmergency    = "emergency"
)

// HealthContent is library material shared by all users.
type HealthContent struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string         `gorm:"size:255;not null;uniqueIndex" json:"title"`
	Body           string         `gorm:"type:text" json:"content"`
	ContentType    string         `gorm:"size:32;not null;index" json:"content_type"`
	Trimester      int            `gorm:"not null;index" json:"trimester"`
	WeekRangeStart *int           `json:"week_range_start,omitempty"`
	WeekRangeEnd   *int           `json:"week_range_end,omitempty"`
	Tags           datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	IsPremium      bool           `gorm:"not null;default:false;index" json:"is_premium"`
	ImageURL       string         `gorm:"type:text" json:"image_url,omitempty"`
	VideoURL       string         `gorm:"type:text" json:"video_url,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func IsValidContentType(contentType string) bool {
	switch contentType {
	case ContentNutrition, ContentExercise, ContentMentalHealth, ContentGeneral, ContentEmergency:
		return true
	}
	return false
}
