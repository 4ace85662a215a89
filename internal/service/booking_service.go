package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/eventhub/booking-platform/internal/models"
	"github.com/eventhub/booking-platform/internal/pricing"
	"github.com/eventhub/booking-platform/internal/repository"
	"github.com/eventhub/booking-platform/pkg/rabbitmq"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInsufficientTickets = errors.New("insufficient tickets available")

	// ErrVersionConflict: the optimistic check lost a race — the event was
	// modified by another transaction. Retry the whole booking attempt.
	ErrVersionConflict = errors.New("the event was modified by another transaction")

	// ErrBookingConflict: pessimistic lock contention (deadlock or lock
	// timeout). Retryable with backoff.
	ErrBookingConflict = errors.New("booking conflict, please retry")
)

// Strategy selects how booking creation guards the inventory decrement.
type Strategy string

const (
	// StrategyOptimistic reads without a lock and relies on the event's
	// version column to detect conflicting writers at flush time.
	StrategyOptimistic Strategy = "optimistic"

	// StrategyPessimistic takes an exclusive row lock up front, serializing
	// concurrent bookings against the same event.
	StrategyPessimistic Strategy = "pessimistic"
)

type CreateBookingInput struct {
	EventID     uint
	UserID      uint
	Quantity    int
	BookingTime time.Time
	Strategy    Strategy
}

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	QuoteCost(ctx context.Context, eventID uint, quantity int) (float64, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBookings(ctx context.Context, eventID uint) ([]models.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository
	publisher   *rabbitmq.Publisher
}

func NewBookingService(bookingRepo repository.BookingRepository, eventRepo repository.EventRepository, publisher *rabbitmq.Publisher) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		publisher:   publisher,
	}
}

// CreateBooking decrements the event's ticket pool and records the booking
// in one transaction; both happen or neither does. The strategy decides how
// the check-then-decrement gap is closed: a version compare-and-swap or an
// up-front row lock. No external call happens while the transaction is open.
func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if in.BookingTime.IsZero() {
		in.BookingTime = time.Now()
	}

	var result *models.Booking
	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch in.Strategy {
		case StrategyPessimistic:
			return s.createPessimistic(ctx, tx, in, &result)
		default:
			return s.createOptimistic(ctx, tx, in, &result)
		}
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, "booking.created", result); err != nil {
			log.Printf("[BookingService] publish booking.created for %d: %v", result.ID, err)
		}
	}
	return result, nil
}

func (s *bookingService) createOptimistic(ctx context.Context, tx *gorm.DB, in CreateBookingInput, out **models.Booking) error {
	event, err := s.eventRepo.FindByIDTx(ctx, tx, in.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	if event.AvailableTickets < in.Quantity {
		return ErrInsufficientTickets
	}

	totalCost := pricing.TotalCost(event, in.Quantity)

	swapped, err := s.eventRepo.CompareAndDecrement(ctx, tx, event, in.Quantity)
	if err != nil {
		return err
	}
	if !swapped {
		return ErrVersionConflict
	}

	return s.insertBooking(ctx, tx, in, totalCost, out)
}

func (s *bookingService) createPessimistic(ctx context.Context, tx *gorm.DB, in CreateBookingInput, out **models.Booking) error {
	event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, in.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return translateLockError(err)
	}

	if event.AvailableTickets < in.Quantity {
		return ErrInsufficientTickets
	}

	totalCost := pricing.TotalCost(event, in.Quantity)

	if err := s.eventRepo.DecrementTickets(ctx, tx, event.ID, in.Quantity); err != nil {
		return translateLockError(err)
	}

	return s.insertBooking(ctx, tx, in, totalCost, out)
}

func (s *bookingService) insertBooking(ctx context.Context, tx *gorm.DB, in CreateBookingInput, totalCost float64, out **models.Booking) error {
	booking := &models.Booking{
		EventID:     in.EventID,
		UserID:      in.UserID,
		BookingTime: in.BookingTime,
		Quantity:    in.Quantity,
		TotalCost:   totalCost,
	}
	if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
		return err
	}
	*out = booking
	return nil
}

// QuoteCost prices a prospective booking against current inventory without
// mutating anything.
func (s *bookingService) QuoteCost(ctx context.Context, eventID uint, quantity int) (float64, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrEventNotFound
		}
		return 0, err
	}
	if event.AvailableTickets < quantity {
		return 0, ErrInsufficientTickets
	}

	return pricing.TotalCost(event, quantity), nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, eventID uint) ([]models.Booking, error) {
	return s.bookingRepo.FindByEventID(ctx, eventID)
}

// Postgres error codes that mean lock contention rather than a broken query.
const (
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

// translateLockError turns storage-engine contention into the retryable
// booking conflict; anything else stays fatal.
func translateLockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
			return ErrBookingConflict
		}
	}
	return err
}
