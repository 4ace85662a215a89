package dto

import (
	"time"

	"github.com/eventhub/booking-platform/internal/models"
	"github.com/eventhub/booking-platform/internal/service"
)

type EventResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	StartsAt         time.Time `json:"starts_at"`
	Venue            string    `json:"venue"`
	LocationLat      float64   `json:"location_lat"`
	LocationLong     float64   `json:"location_long"`
	AvailableTickets int       `json:"available_tickets"`
	BasePrice        float64   `json:"base_price"`
	SurgePrice       float64   `json:"surge_price"`
	SurgeThreshold   int       `json:"surge_threshold"`
}

type BookingResponse struct {
	ID          uint      `json:"id"`
	EventID     uint      `json:"event_id"`
	UserID      uint      `json:"user_id"`
	BookingTime time.Time `json:"booking_time"`
	Quantity    int       `json:"quantity"`
	TotalCost   float64   `json:"total_cost"`
	CreatedAt   time.Time `json:"created_at"`
}

type PaymentResponse struct {
	ID            uint                 `json:"id"`
	BookingID     uint                 `json:"booking_id"`
	Amount        float64              `json:"amount"`
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id"`
	PaymentTime   time.Time            `json:"payment_time"`
}

type QuoteResponse struct {
	EventID   uint    `json:"event_id"`
	Quantity  int     `json:"quantity"`
	TotalCost float64 `json:"total_cost"`
}

type PaymentIntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		Name:             e.Name,
		StartsAt:         e.StartsAt,
		Venue:            e.Venue,
		LocationLat:      e.LocationLat,
		LocationLong:     e.LocationLong,
		AvailableTickets: e.AvailableTickets,
		BasePrice:        e.BasePrice,
		SurgePrice:       e.SurgePrice,
		SurgeThreshold:   e.SurgeThreshold,
	}
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		EventID:     b.EventID,
		UserID:      b.UserID,
		BookingTime: b.BookingTime,
		Quantity:    b.Quantity,
		TotalCost:   b.TotalCost,
		CreatedAt:   b.CreatedAt,
	}
}

func ToPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		PaymentTime:   p.PaymentTime,
	}
}

func ToPaymentIntentResponse(r *service.PaymentIntentResult) PaymentIntentResponse {
	return PaymentIntentResponse{
		PaymentIntentID: r.PaymentIntentID,
		ClientSecret:    r.ClientSecret,
	}
}
