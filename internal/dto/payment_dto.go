package dto

import "github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"

type CreatePaymentRequest struct {
	PhoneNumber string `json:"phone_number"`
	Description string `json:"description"`
}

type PaymentResponse struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	TransactionID string `json:"transaction_id,omitempty"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
}

func NewPaymentResponse(attempt *models.PaymentAttempt) PaymentResponse {
	resp := PaymentResponse{
		Reference:   attempt.Reference,
		Status:      attempt.Status,
		Amount:      attempt.Amount,
		Currency:    attempt.Currency,
		CheckoutURL: attempt.CheckoutURL,
	}
	if attempt.TransactionID != nil {
		resp.TransactionID = *attempt.TransactionID
	}
	return resp
}

type WebhookAck struct {
	Received bool   `json:"received"`
	Applied  bool   `json:"applied"`
	Status   string `json:"status"`
}
