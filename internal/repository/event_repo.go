package repository

import (
	"context"

	"github.com/eventhub/booking-platform/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindAll(ctx context.Context) ([]models.Event, error)
	Search(ctx context.Context, name, venue string, limit, offset int) ([]models.Event, error)

	// FindByIDTx reads the event inside the caller's transaction without
	// taking a lock — the optimistic path's snapshot read.
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)

	// FindByIDForUpdate acquires an exclusive row lock held until the
	// transaction ends — the pessimistic path's entry point.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)

	// CompareAndDecrement applies the optimistic write: decrement the ticket
	// pool and bump the version, but only if the row still carries the
	// version the caller read. Returns false (not an error) when another
	// transaction advanced the version first.
	CompareAndDecrement(ctx context.Context, tx *gorm.DB, event *models.Event, quantity int) (bool, error)

	// DecrementTickets decrements unconditionally; callers must already hold
	// the row lock.
	DecrementTickets(ctx context.Context, tx *gorm.DB, eventID uint, quantity int) error

	// RestoreTickets returns quantity tickets to the pool; callers must
	// already hold the row lock.
	RestoreTickets(ctx context.Context, tx *gorm.DB, eventID uint, quantity int) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Search(ctx context.Context, name, venue string, limit, offset int) ([]models.Event, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{})
	if name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	if venue != "" {
		q = q.Where("venue ILIKE ?", "%"+venue+"%")
	}
	if limit <= 0 {
		limit = 10
	}

	var events []models.Event
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) CompareAndDecrement(ctx context.Context, tx *gorm.DB, event *models.Event, quantity int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND version = ?", event.ID, event.Version).
		Updates(map[string]interface{}{
			"available_tickets": gorm.Expr("available_tickets - ?", quantity),
			"version":           event.Version + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	// The caller already read the row, so zero rows here means a version
	// mismatch, never a missing event.
	return res.RowsAffected > 0, nil
}

func (r *eventRepository) DecrementTickets(ctx context.Context, tx *gorm.DB, eventID uint, quantity int) error {
	return r.adjustTickets(ctx, tx, eventID, -quantity)
}

func (r *eventRepository) RestoreTickets(ctx context.Context, tx *gorm.DB, eventID uint, quantity int) error {
	return r.adjustTickets(ctx, tx, eventID, quantity)
}

// adjustTickets moves the pool by delta and bumps the version so concurrent
// optimistic writers see the change.
func (r *eventRepository) adjustTickets(ctx context.Context, tx *gorm.DB, eventID uint, delta int) error {
	return tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"available_tickets": gorm.Expr("available_tickets + ?", delta),
			"version":           gorm.Expr("version + 1"),
		}).Error
}
