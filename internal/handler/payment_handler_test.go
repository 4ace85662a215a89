package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eventhub/booking-platform/internal/dto"
	"github.com/eventhub/booking-platform/internal/models"
	"github.com/eventhub/booking-platform/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Mock PaymentService ---

type mockPaymentService struct {
	createIntentFn func(ctx context.Context, bookingID uint) (*service.PaymentIntentResult, error)
	bookAndPayFn   func(ctx context.Context, in service.CreateBookingInput) (*service.PaymentIntentResult, error)
	confirmFn      func(ctx context.Context, transactionID string) (*models.Payment, error)
	cancelFn       func(ctx context.Context, transactionID string) (*models.Payment, error)
	webhookFn      func(ctx context.Context, payload []byte, signature string) error
	getFn          func(ctx context.Context, id uint) (*models.Payment, error)
}

func (m *mockPaymentService) CreateIntent(ctx context.Context, bookingID uint) (*service.PaymentIntentResult, error) {
	return m.createIntentFn(ctx, bookingID)
}
func (m *mockPaymentService) BookAndPay(ctx context.Context, in service.CreateBookingInput) (*service.PaymentIntentResult, error) {
	return m.bookAndPayFn(ctx, in)
}
func (m *mockPaymentService) ConfirmPayment(ctx context.Context, transactionID string) (*models.Payment, error) {
	return m.confirmFn(ctx, transactionID)
}
func (m *mockPaymentService) CancelPayment(ctx context.Context, transactionID string) (*models.Payment, error) {
	return m.cancelFn(ctx, transactionID)
}
func (m *mockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.webhookFn(ctx, payload, signature)
}
func (m *mockPaymentService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	return m.getFn(ctx, id)
}

// --- Tests ---

func TestPayBooking_Handler_Success(t *testing.T) {
	svc := &mockPaymentService{
		createIntentFn: func(ctx context.Context, bookingID uint) (*service.PaymentIntentResult, error) {
			assert.Equal(t, uint(4), bookingID)
			return &service.PaymentIntentResult{
				PaymentIntentID: "pi_123",
				ClientSecret:    "pi_123_secret",
			}, nil
		},
	}

	c, rec := newBookingContext(t, http.MethodPost, "/api/v1/bookings/4/pay", "")
	c.SetParamNames("id")
	c.SetParamValues("4")

	assert.NoError(t, NewPaymentHandler(svc).PayBooking(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.PaymentIntentResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pi_123", resp.PaymentIntentID)
	assert.Equal(t, "pi_123_secret", resp.ClientSecret)
}

func TestBookAndPay_Handler_Success(t *testing.T) {
	svc := &mockPaymentService{
		bookAndPayFn: func(ctx context.Context, in service.CreateBookingInput) (*service.PaymentIntentResult, error) {
			assert.Equal(t, uint(3), in.EventID)
			assert.Equal(t, 2, in.Quantity)
			return &service.PaymentIntentResult{PaymentIntentID: "pi_xyz", ClientSecret: "sec"}, nil
		},
	}

	body := `{"event_id":3,"user_id":9,"quantity":2,"strategy":"optimistic"}`
	c, rec := newBookingContext(t, http.MethodPost, "/api/v1/book-and-pay", body)

	assert.NoError(t, NewPaymentHandler(svc).BookAndPay(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestBookAndPay_Handler_GatewayError(t *testing.T) {
	svc := &mockPaymentService{
		bookAndPayFn: func(ctx context.Context, in service.CreateBookingInput) (*service.PaymentIntentResult, error) {
			return nil, service.ErrGateway
		},
	}

	body := `{"event_id":3,"user_id":9,"quantity":2}`
	c, _ := newBookingContext(t, http.MethodPost, "/api/v1/book-and-pay", body)

	err := NewPaymentHandler(svc).BookAndPay(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, he.Code)
}

func TestConfirmPayment_Handler(t *testing.T) {
	svc := &mockPaymentService{
		confirmFn: func(ctx context.Context, transactionID string) (*models.Payment, error) {
			assert.Equal(t, "pi_123", transactionID)
			return &models.Payment{ID: 1, TransactionID: transactionID, Status: models.PaymentCompleted}, nil
		},
	}

	c, rec := newBookingContext(t, http.MethodPost, "/api/v1/payments/pi_123/confirm", "")
	c.SetParamNames("transaction_id")
	c.SetParamValues("pi_123")

	assert.NoError(t, NewPaymentHandler(svc).ConfirmPayment(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PaymentResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.PaymentCompleted, resp.Status)
}

func TestCancelPayment_Handler_NotFound(t *testing.T) {
	svc := &mockPaymentService{
		cancelFn: func(ctx context.Context, transactionID string) (*models.Payment, error) {
			return nil, service.ErrPaymentNotFound
		},
	}

	c, _ := newBookingContext(t, http.MethodPost, "/api/v1/payments/pi_missing/cancel", "")
	c.SetParamNames("transaction_id")
	c.SetParamValues("pi_missing")

	err := NewPaymentHandler(svc).CancelPayment(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestHandleWebhook_Handler_Success(t *testing.T) {
	var gotPayload []byte
	var gotSignature string
	svc := &mockPaymentService{
		webhookFn: func(ctx context.Context, payload []byte, signature string) error {
			gotPayload = payload
			gotSignature = signature
			return nil
		},
	}

	e := echo.New()
	body := `{"type":"payment_intent.succeeded","transaction_id":"pi_123"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(body))
	req.Header.Set(signatureHeader, "sig-abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, NewPaymentHandler(svc).HandleWebhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, string(gotPayload))
	assert.Equal(t, "sig-abc", gotSignature)
}

func TestHandleWebhook_Handler_MissingSignature(t *testing.T) {
	c, _ := newBookingContext(t, http.MethodPost, "/webhooks/payment", `{}`)

	err := NewPaymentHandler(&mockPaymentService{}).HandleWebhook(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestHandleWebhook_Handler_InvalidSignature(t *testing.T) {
	svc := &mockPaymentService{
		webhookFn: func(ctx context.Context, payload []byte, signature string) error {
			return service.ErrInvalidSignature
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{}`))
	req.Header.Set(signatureHeader, "bad-sig")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := NewPaymentHandler(svc).HandleWebhook(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
