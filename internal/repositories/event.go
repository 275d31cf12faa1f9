package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"custodia/internal/models"
)

// EventRepository appends change events. Events are append-only; there is no
// update or delete path.
type EventRepository interface {
	Create(event *models.ChangeEvent) error
	ListByKind(kind string, limit, offset int) ([]models.ChangeEvent, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(event *models.ChangeEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

func (r *eventRepository) ListByKind(kind string, limit, offset int) ([]models.ChangeEvent, error) {
	var events []models.ChangeEvent
	err := r.db.Where("kind = ?", kind).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}
