package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Terminal reports whether the status can no longer change. COMPLETED and
// FAILED payments ignore any further gateway notifications.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

type Payment struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	BookingID      uint          `gorm:"not null;index" json:"booking_id"`
	Amount         float64       `gorm:"not null" json:"amount"`
	Status         PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	TransactionID  string        `gorm:"not null;uniqueIndex" json:"transaction_id"`
	IdempotencyKey string        `gorm:"not null;uniqueIndex" json:"idempotency_key"`
	PaymentTime    time.Time     `gorm:"not null" json:"payment_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}
