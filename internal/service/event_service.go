package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/eventhub/booking-platform/internal/models"
	"github.com/eventhub/booking-platform/internal/repository"
	"github.com/eventhub/booking-platform/pkg/rabbitmq"
	"gorm.io/gorm"
)

type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	SearchEvents(ctx context.Context, name, venue string, limit, offset int) ([]models.Event, error)
}

type eventService struct {
	repo      repository.EventRepository
	publisher *rabbitmq.Publisher
}

func NewEventService(repo repository.EventRepository, publisher *rabbitmq.Publisher) EventService {
	return &eventService{repo: repo, publisher: publisher}
}

func (s *eventService) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, "event.created", event); err != nil {
			log.Printf("[EventService] publish event.created for %d: %v", event.ID, err)
		}
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.repo.FindAll(ctx)
}

func (s *eventService) SearchEvents(ctx context.Context, name, venue string, limit, offset int) ([]models.Event, error) {
	return s.repo.Search(ctx, name, venue, limit, offset)
}
