package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// EventRepository exposes persistence helpers for events.
type EventRepository interface {
	GetByID(ctx context.Context, id uint) (models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs the event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return models.Event{}, err
	}
	return event, nil
}
