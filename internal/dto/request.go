package dto

import (
	"time"

	"github.com/eventhub/booking-platform/internal/service"
)

type CreateEventRequest struct {
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

type CreateBookingRequest struct {
	EventID     uint      `json:"event_id"`
	UserID      uint      `json:"user_id"`
	Quantity    int       `json:"quantity"`
	BookingTime time.Time `json:"booking_time"`

	// Strategy is "optimistic" (default) or "pessimistic".
	Strategy string `json:"strategy"`
}

func (r *CreateBookingRequest) ToInput() service.CreateBookingInput {
	strategy := service.StrategyOptimistic
	if r.Strategy == string(service.StrategyPessimistic) {
		strategy = service.StrategyPessimistic
	}
	return service.CreateBookingInput{
		EventID:     r.EventID,
		UserID:      r.UserID,
		Quantity:    r.Quantity,
		BookingTime: r.BookingTime,
		Strategy:    strategy,
	}
}
