package gateway

import "strings"

// Gateway-reported payment states.
const (
	StatusSuccess   = "success"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusPending   = "pending"
)

// Notification is the webhook body the gateway posts when a payment settles.
type Notification struct {
	Reference     string `json:"reference"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	PhoneNumber   string `json:"phone_number"`
	Description   string `json:"description"`
	Timestamp     string `json:"timestamp"`
}

// NormalizedStatus lower-cases and trims the reported status.
func (n Notification) NormalizedStatus() string {
	return strings.ToLower(strings.TrimSpace(n.Status))
}
