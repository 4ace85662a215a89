package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eventhub/booking-platform/internal/dto"
	"github.com/eventhub/booking-platform/internal/models"
	"github.com/eventhub/booking-platform/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn func(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error)
	quoteFn  func(ctx context.Context, eventID uint, quantity int) (float64, error)
	getFn    func(ctx context.Context, id uint) (*models.Booking, error)
	listFn   func(ctx context.Context, eventID uint) ([]models.Booking, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
	return m.createFn(ctx, in)
}
func (m *mockBookingService) QuoteCost(ctx context.Context, eventID uint, quantity int) (float64, error) {
	return m.quoteFn(ctx, eventID, quantity)
}
func (m *mockBookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return m.getFn(ctx, id)
}
func (m *mockBookingService) ListBookings(ctx context.Context, eventID uint) ([]models.Booking, error) {
	return m.listFn(ctx, eventID)
}

func newBookingContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// --- Tests ---

func TestCreateBooking_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
			assert.Equal(t, service.StrategyPessimistic, in.Strategy)
			return &models.Booking{
				ID:          1,
				EventID:     in.EventID,
				UserID:      in.UserID,
				Quantity:    in.Quantity,
				TotalCost:   2250,
				BookingTime: time.Now(),
			}, nil
		},
	}

	body := `{"event_id":3,"user_id":7,"quantity":8,"strategy":"pessimistic"}`
	c, rec := newBookingContext(t, http.MethodPost, "/api/v1/bookings", body)

	h := NewBookingHandler(svc)
	assert.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.BookingResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, uint(3), resp.EventID)
	assert.Equal(t, uint(7), resp.UserID)
	assert.Equal(t, 8, resp.Quantity)
	assert.Equal(t, 2250.0, resp.TotalCost)
}

func TestCreateBooking_Handler_DefaultsToOptimistic(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
			assert.Equal(t, service.StrategyOptimistic, in.Strategy)
			return &models.Booking{ID: 1, EventID: in.EventID, UserID: in.UserID, Quantity: in.Quantity}, nil
		},
	}

	body := `{"event_id":1,"user_id":2,"quantity":1}`
	c, rec := newBookingContext(t, http.MethodPost, "/api/v1/bookings", body)

	h := NewBookingHandler(svc)
	assert.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateBooking_Handler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"insufficient tickets", service.ErrInsufficientTickets, http.StatusBadRequest},
		{"invalid quantity", service.ErrInvalidQuantity, http.StatusBadRequest},
		{"version conflict", service.ErrVersionConflict, http.StatusConflict},
		{"lock conflict", service.ErrBookingConflict, http.StatusConflict},
		{"event not found", service.ErrEventNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockBookingService{
				createFn: func(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
					return nil, tc.err
				},
			}

			body := `{"event_id":1,"user_id":2,"quantity":5}`
			c, _ := newBookingContext(t, http.MethodPost, "/api/v1/bookings", body)

			err := NewBookingHandler(svc).CreateBooking(c)
			he, ok := err.(*echo.HTTPError)
			assert.True(t, ok)
			assert.Equal(t, tc.wantCode, he.Code)
		})
	}
}

func TestCreateBooking_Handler_MissingIDs(t *testing.T) {
	c, _ := newBookingContext(t, http.MethodPost, "/api/v1/bookings", `{"quantity":2}`)

	err := NewBookingHandler(&mockBookingService{}).CreateBooking(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestQuoteCost_Handler(t *testing.T) {
	svc := &mockBookingService{
		quoteFn: func(ctx context.Context, eventID uint, quantity int) (float64, error) {
			assert.Equal(t, uint(5), eventID)
			assert.Equal(t, 8, quantity)
			return 2250, nil
		},
	}

	c, rec := newBookingContext(t, http.MethodGet, "/api/v1/events/5/quote?quantity=8", "")
	c.SetParamNames("id")
	c.SetParamValues("5")

	assert.NoError(t, NewBookingHandler(svc).QuoteCost(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.QuoteResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2250.0, resp.TotalCost)
	assert.Equal(t, uint(5), resp.EventID)
}

func TestQuoteCost_Handler_MissingQuantity(t *testing.T) {
	c, _ := newBookingContext(t, http.MethodGet, "/api/v1/events/5/quote", "")
	c.SetParamNames("id")
	c.SetParamValues("5")

	err := NewBookingHandler(&mockBookingService{}).QuoteCost(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetBooking_Handler_NotFound(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, id uint) (*models.Booking, error) {
			return nil, service.ErrBookingNotFound
		},
	}

	c, _ := newBookingContext(t, http.MethodGet, "/api/v1/bookings/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := NewBookingHandler(svc).GetBooking(c)
	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestListBookings_Handler(t *testing.T) {
	svc := &mockBookingService{
		listFn: func(ctx context.Context, eventID uint) ([]models.Booking, error) {
			return []models.Booking{
				{ID: 1, EventID: eventID, UserID: 1, Quantity: 2, TotalCost: 400},
				{ID: 2, EventID: eventID, UserID: 2, Quantity: 1, TotalCost: 200},
			}, nil
		},
	}

	c, rec := newBookingContext(t, http.MethodGet, "/api/v1/events/1/bookings", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	assert.NoError(t, NewBookingHandler(svc).ListBookings(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.BookingResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}
