package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/eventhub/booking-platform/internal/gateway"
	"github.com/eventhub/booking-platform/internal/models"
	"github.com/eventhub/booking-platform/internal/repository"
	"github.com/eventhub/booking-platform/pkg/rabbitmq"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidSignature: the webhook payload failed verification. Nothing
	// is mutated.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrGateway: the external payment provider call failed. When it happens
	// after the booking transaction committed the booking stays in place.
	ErrGateway = errors.New("payment gateway error")
)

// PaymentIntentResult is returned to the client to complete the charge.
type PaymentIntentResult struct {
	PaymentIntentID string
	ClientSecret    string
}

type PaymentService interface {
	CreateIntent(ctx context.Context, bookingID uint) (*PaymentIntentResult, error)
	BookAndPay(ctx context.Context, in CreateBookingInput) (*PaymentIntentResult, error)
	ConfirmPayment(ctx context.Context, transactionID string) (*models.Payment, error)
	CancelPayment(ctx context.Context, transactionID string) (*models.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	GetPayment(ctx context.Context, id uint) (*models.Payment, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	eventRepo   repository.EventRepository
	bookingSvc  BookingService
	gw          gateway.PaymentGateway
	publisher   *rabbitmq.Publisher
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	bookingSvc BookingService,
	gw gateway.PaymentGateway,
	publisher *rabbitmq.Publisher,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		bookingSvc:  bookingSvc,
		gw:          gw,
		publisher:   publisher,
	}
}

// CreateIntent registers an external payment intent for a committed booking
// and records a PENDING payment for it. Runs outside any booking
// transaction: the inventory decrement is already committed, and the
// gateway call must never happen while a row lock is held.
func (s *paymentService) CreateIntent(ctx context.Context, bookingID uint) (*PaymentIntentResult, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	idempotencyKey := uuid.NewString()
	metadata := map[string]string{
		"booking_id": strconv.FormatUint(uint64(booking.ID), 10),
		"event_id":   strconv.FormatUint(uint64(booking.EventID), 10),
	}

	intent, err := s.gw.CreatePaymentIntent(ctx, booking.TotalCost, metadata, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	payment := &models.Payment{
		BookingID:      booking.ID,
		Amount:         booking.TotalCost,
		Status:         models.PaymentPending,
		TransactionID:  intent.ID,
		IdempotencyKey: idempotencyKey,
		PaymentTime:    time.Now(),
	}
	if err := s.paymentRepo.Create(ctx, s.paymentRepo.GetDB(), payment); err != nil {
		return nil, fmt.Errorf("record payment for intent %s: %w", intent.ID, err)
	}

	return &PaymentIntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
	}, nil
}

// BookAndPay is the composite flow: create the booking, then the payment
// intent. The booking commits first; if intent creation fails afterwards the
// booking and its inventory decrement remain, flagged for reconciliation.
func (s *paymentService) BookAndPay(ctx context.Context, in CreateBookingInput) (*PaymentIntentResult, error) {
	booking, err := s.bookingSvc.CreateBooking(ctx, in)
	if err != nil {
		return nil, err
	}

	result, err := s.CreateIntent(ctx, booking.ID)
	if err != nil {
		log.Printf("[PaymentService] booking %d committed but intent creation failed, needs reconciliation: %v", booking.ID, err)
		return nil, err
	}
	return result, nil
}

// ConfirmPayment confirms the intent with the gateway and marks the payment
// COMPLETED. The local payment is resolved first so unknown or
// already-terminal transactions never trigger an external call; the terminal
// check is repeated under the row lock in applySuccess.
func (s *paymentService) ConfirmPayment(ctx context.Context, transactionID string) (*models.Payment, error) {
	payment, err := s.resolvePayment(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if payment.Status.Terminal() {
		return payment, nil
	}

	if err := s.gw.Confirm(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return s.applySuccess(ctx, transactionID)
}

// CancelPayment cancels the intent with the gateway, marks the payment
// FAILED, and returns the booking's tickets to the event. Like
// ConfirmPayment, the gateway is only called for a known, still-pending
// payment.
func (s *paymentService) CancelPayment(ctx context.Context, transactionID string) (*models.Payment, error) {
	payment, err := s.resolvePayment(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if payment.Status.Terminal() {
		return payment, nil
	}

	if err := s.gw.Cancel(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return s.applyFailure(ctx, transactionID)
}

func (s *paymentService) resolvePayment(ctx context.Context, transactionID string) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// HandleWebhook verifies the gateway signature and dispatches the event.
// Unknown event types are logged and ignored.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gw.VerifyWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case gateway.EventPaymentSucceeded:
		_, err = s.applySuccess(ctx, event.TransactionID)
		return err
	case gateway.EventPaymentFailed:
		_, err = s.applyFailure(ctx, event.TransactionID)
		return err
	default:
		log.Printf("[PaymentService] ignoring webhook event type %q", event.Type)
		return nil
	}
}

func (s *paymentService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// applySuccess transitions PENDING → COMPLETED. Re-delivery for a payment
// already in a terminal state is a no-op.
func (s *paymentService) applySuccess(ctx context.Context, transactionID string) (*models.Payment, error) {
	var result *models.Payment
	err := s.paymentRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.FindByTransactionIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return translateLockError(err)
		}

		if payment.Status.Terminal() {
			result = payment
			return nil
		}

		if err := s.paymentRepo.UpdateStatus(ctx, tx, payment.ID, models.PaymentCompleted); err != nil {
			return err
		}
		payment.Status = models.PaymentCompleted
		result = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, "payment.completed", result); err != nil {
			log.Printf("[PaymentService] publish payment.completed for %s: %v", transactionID, err)
		}
	}
	return result, nil
}

// applyFailure transitions PENDING → FAILED and compensates by restoring the
// booking's quantity to the event's pool, under the same row-lock discipline
// as booking creation. The status guard makes the compensation run exactly
// once no matter how many times the failure is delivered.
func (s *paymentService) applyFailure(ctx context.Context, transactionID string) (*models.Payment, error) {
	var result *models.Payment
	err := s.paymentRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.FindByTransactionIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return translateLockError(err)
		}

		if payment.Status.Terminal() {
			result = payment
			return nil
		}

		booking, err := s.bookingRepo.FindByIDTx(ctx, tx, payment.BookingID)
		if err != nil {
			return err
		}

		// Lock the event row before restoring: compensation races against
		// live bookings for the same event.
		if _, err := s.eventRepo.FindByIDForUpdate(ctx, tx, booking.EventID); err != nil {
			return translateLockError(err)
		}
		if err := s.eventRepo.RestoreTickets(ctx, tx, booking.EventID, booking.Quantity); err != nil {
			return translateLockError(err)
		}

		if err := s.paymentRepo.UpdateStatus(ctx, tx, payment.ID, models.PaymentFailed); err != nil {
			return err
		}
		payment.Status = models.PaymentFailed
		result = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, "payment.failed", result); err != nil {
			log.Printf("[PaymentService] publish payment.failed for %s: %v", transactionID, err)
		}
	}
	return result, nil
}
