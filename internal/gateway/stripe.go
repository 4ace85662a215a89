package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements PaymentGateway on top of the Stripe API.
type StripeGateway struct {
	webhookSecret string
	currency      string
}

func NewStripeGateway(cfg *Config) (*StripeGateway, error) {
	if cfg == nil || cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	currency := cfg.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	stripe.Key = cfg.SecretKey

	return &StripeGateway{
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
	}, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount float64, metadata map[string]string, idempotencyKey string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		// Stripe amounts are in the smallest currency unit
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: metadata,
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(idempotencyKey)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) Confirm(ctx context.Context, transactionID string) error {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	if _, err := paymentintent.Confirm(transactionID, params); err != nil {
		return fmt.Errorf("confirm payment intent %s: %w", transactionID, err)
	}
	return nil
}

func (g *StripeGateway) Cancel(ctx context.Context, transactionID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := paymentintent.Cancel(transactionID, params); err != nil {
		return fmt.Errorf("cancel payment intent %s: %w", transactionID, err)
	}
	return nil
}

func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	parsed := &WebhookEvent{Type: EventType(event.Type)}

	switch parsed.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", event.Type, err)
		}
		parsed.TransactionID = pi.ID
	}

	return parsed, nil
}

func (g *StripeGateway) Name() string {
	return "stripe"
}
