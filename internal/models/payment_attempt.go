package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// PaymentAttempt tracks one checkout. Reference is the idempotency key shared
// with the gateway.
type PaymentAttempt struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Reference      string         `gorm:"size:64;not null;uniqueIndex" json:"reference"`
	Amount         int64          `gorm:"not null" json:"amount"`
	Currency       string         `gorm:"size:3;not null" json:"currency"`
	Description    string         `gorm:"size:255" json:"description"`
	Phone          string         `gorm:"size:32" json:"phone"`
	Status         string         `gorm:"size:20;not null;index" json:"status"`
	TransactionID  *string        `gorm:"size:128" json:"transaction_id,omitempty"`
	CheckoutURL    string         `gorm:"type:text" json:"checkout_url,omitempty"`
	GatewayPayload datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (p *PaymentAttempt) IsTerminal() bool {
	return p.Status != PaymentPending
}
