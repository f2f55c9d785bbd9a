package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Subscription rows are unique per owner while active.
type Subscription struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID          uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_subscriptions_owner_active,where:status = 'active'" json:"owner_id"`
	PlanType         string     `gorm:"size:20;not null" json:"plan_type"`
	Status           string     `gorm:"size:20;not null;index" json:"status"`
	Amount           int64      `gorm:"not null" json:"amount"`
	Currency         string     `gorm:"size:3;not null" json:"currency"`
	PaymentReference string     `gorm:"size:64;index" json:"payment_reference,omitempty"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
