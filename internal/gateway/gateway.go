// Package gateway talks to the Instasend payment and SMS API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/metrics"
)

// PaymentRequest is what the gateway needs to open a checkout.
type PaymentRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	PhoneNumber string `json:"phone_number"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// PaymentResponse is the gateway's acknowledgement of a checkout.
type PaymentResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	CheckoutURL   string `json:"checkout_url"`
	Message       string `json:"message"`
}

type SMSRequest struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
}

type PaymentInitiator interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, req SMSRequest) error
}

// Client is the HTTP implementation of PaymentInitiator and SMSSender.
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries uint64
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.GatewayAPIURL, "/"),
		apiKey:     cfg.GatewayAPIKey,
		maxRetries: cfg.GatewayMaxRetries,
		httpClient: &http.Client{Timeout: cfg.GatewayTimeout},
	}
}

func (c *Client) IsConfigured() bool { return c.apiKey != "" }

func (c *Client) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	var resp PaymentResponse
	if err := c.post(ctx, "payment", "/api/v1/payment/collection/", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		metrics.GatewayErrors.WithLabelValues("payment").Inc()
		return nil, fmt.Errorf("%w: payment rejected: %s", errs.ErrGateway, resp.Message)
	}
	return &resp, nil
}

func (c *Client) SendSMS(ctx context.Context, req SMSRequest) error {
	return c.post(ctx, "sms", "/api/v1/sms/send/", req, nil)
}

// post sends body as JSON and decodes the reply into out. Transport errors
// and 5xx replies are retried with exponential backoff; 4xx replies are not.
func (c *Client) post(ctx context.Context, operation, path string, body, out interface{}) error {
	if !c.IsConfigured() {
		metrics.GatewayErrors.WithLabelValues(operation).Inc()
		return fmt.Errorf("%w: api key not configured", errs.ErrGateway)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	attempt := 0
	call := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			slog.Warn("gateway request failed", "operation", operation, "attempt", attempt, "error", err)
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= 500:
			slog.Warn("gateway returned server error", "operation", operation, "attempt", attempt, "status", resp.StatusCode)
			return fmt.Errorf("status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
		}

		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	if err := backoff.Retry(call, retry); err != nil {
		metrics.GatewayErrors.WithLabelValues(operation).Inc()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s: %w", errs.ErrGateway, operation, err)
		}
		return fmt.Errorf("%w: %s: %v", errs.ErrGateway, operation, err)
	}
	return nil
}
