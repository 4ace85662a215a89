// Package gateway abstracts the external payment provider. The core only
// needs intent creation, confirm/cancel, and webhook verification; anything
// provider-specific stays behind the PaymentGateway interface.
package gateway

import "context"

type EventType string

const (
	EventPaymentSucceeded EventType = "payment_intent.succeeded"
	EventPaymentFailed    EventType = "payment_intent.payment_failed"
)

// PaymentIntent is the gateway's handle for a pending charge. ClientSecret
// is handed to the client to complete the payment out of band.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// WebhookEvent is a signature-verified notification from the gateway.
type WebhookEvent struct {
	Type          EventType `json:"type"`
	TransactionID string    `json:"transaction_id"`
}

type PaymentGateway interface {
	// CreatePaymentIntent registers a charge with the provider. The
	// idempotency key must make client retries of the same booking-and-pay
	// request collapse into a single external charge.
	CreatePaymentIntent(ctx context.Context, amount float64, metadata map[string]string, idempotencyKey string) (*PaymentIntent, error)

	Confirm(ctx context.Context, transactionID string) error
	Cancel(ctx context.Context, transactionID string) error

	// VerifyWebhook checks the payload signature against the shared webhook
	// secret and parses the event. A bad signature returns an error and the
	// payload must be discarded unprocessed.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)

	Name() string
}

// Config holds provider credentials shared by all gateway implementations.
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}
