package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockGateway is an in-memory PaymentGateway for tests and local
// development. It honors idempotency keys and signs webhook payloads with
// HMAC-SHA256 over the shared secret, so the full verify/dispatch path can
// be exercised without a provider account.
type MockGateway struct {
	mu            sync.Mutex
	webhookSecret string
	intents       map[string]*PaymentIntent // by transaction id
	byKey         map[string]*PaymentIntent // by idempotency key
}

func NewMockGateway(cfg *Config) *MockGateway {
	secret := ""
	if cfg != nil {
		secret = cfg.WebhookSecret
	}
	return &MockGateway{
		webhookSecret: secret,
		intents:       make(map[string]*PaymentIntent),
		byKey:         make(map[string]*PaymentIntent),
	}
}

func (g *MockGateway) CreatePaymentIntent(ctx context.Context, amount float64, metadata map[string]string, idempotencyKey string) (*PaymentIntent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v", amount)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// A retried key returns the original intent, mirroring provider behavior.
	if intent, ok := g.byKey[idempotencyKey]; ok {
		return intent, nil
	}

	id := "pi_mock_" + uuid.NewString()[:8]
	intent := &PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString()[:8],
	}
	g.intents[id] = intent
	if idempotencyKey != "" {
		g.byKey[idempotencyKey] = intent
	}
	return intent, nil
}

func (g *MockGateway) Confirm(ctx context.Context, transactionID string) error {
	return g.require(transactionID)
}

func (g *MockGateway) Cancel(ctx context.Context, transactionID string) error {
	return g.require(transactionID)
}

func (g *MockGateway) require(transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.intents[transactionID]; !ok {
		return fmt.Errorf("unknown payment intent: %s", transactionID)
	}
	return nil
}

func (g *MockGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if !hmac.Equal([]byte(g.SignPayload(payload)), []byte(signature)) {
		return nil, fmt.Errorf("webhook signature mismatch")
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parse webhook payload: %w", err)
	}
	return &event, nil
}

// SignPayload produces the signature VerifyWebhook expects; tests use it to
// craft valid webhook deliveries.
func (g *MockGateway) SignPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *MockGateway) Name() string {
	return "mock"
}
