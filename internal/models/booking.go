package models

import "time"

type Booking struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     uint      `gorm:"not null;index" json:"event_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	BookingTime time.Time `gorm:"not null" json:"booking_time"`
	Quantity    int       `gorm:"not null" json:"quantity"`

	// TotalCost is fixed at creation from the surge-pricing walk and never
	// recomputed afterwards.
	TotalCost float64 `gorm:"not null" json:"total_cost"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}
