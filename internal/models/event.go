package models

import "time"

type Event struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;index" json:"name"`
	StartsAt     time.Time `gorm:"not null;index" json:"starts_at"`
	Venue        string    `gorm:"not null" json:"venue"`
	LocationLat  float64   `gorm:"not null" json:"location_lat"`
	LocationLong float64   `gorm:"not null" json:"location_long"`

	AvailableTickets int     `gorm:"not null;check:available_tickets >= 0" json:"available_tickets"`
	BasePrice        float64 `gorm:"not null" json:"base_price"`
	SurgePrice       float64 `gorm:"not null;default:0" json:"surge_price"`
	SurgeThreshold   int     `gorm:"not null;default:0" json:"surge_threshold"`

	// Version backs the optimistic concurrency check: every successful
	// inventory mutation bumps it, a stale compare-and-swap updates zero rows.
	Version int `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
