// Package payment adapts external card processors to the order lifecycle.
package payment

import (
	"context"
	"errors"
)

var (
	// ErrProcessor wraps failures reported by the processor; the message is
	// safe to show to the client.
	ErrProcessor = errors.New("payment processor error")
	// ErrInvalidWebhook covers bad payloads, bad signatures and a missing secret.
	ErrInvalidWebhook = errors.New("invalid webhook")
)

type EventType string

const (
	EventPaymentSucceeded EventType = "payment_intent.succeeded"
	EventPaymentFailed    EventType = "payment_intent.payment_failed"
)

type Customer struct {
	UserID int64
	Email  string
	Name   string
}

type IntentRequest struct {
	// Amount is in minor currency units.
	Amount     int64
	Currency   string
	CustomerID string
	Metadata   map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	CustomerID   string
}

// WebhookEvent is a verified processor notification about one intent.
type WebhookEvent struct {
	ID       string
	Type     EventType
	IntentID string
}

// Processor is the outbound card-network dependency.
type Processor interface {
	CreateCustomer(ctx context.Context, c Customer) (string, error)
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetPaymentIntent(ctx context.Context, id string) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
