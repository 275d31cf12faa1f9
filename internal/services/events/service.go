// Package events records change notifications. Every admin mutation and every
// request transition appends one event row and logs it; toggles that change
// nothing emit nothing.
package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"custodia/internal/models"
	"custodia/internal/repositories"
)

// Recorder is the emission interface consumed by the engine and the registry.
type Recorder interface {
	Emit(ctx context.Context, kind string, payload models.JSON)
}

type service struct {
	repo   repositories.EventRepository
	logger zerolog.Logger
}

func NewService(repo repositories.EventRepository, logger zerolog.Logger) Recorder {
	if repo == nil {
		panic("event repository is required")
	}
	return &service{repo: repo, logger: logger}
}

// Emit appends the event and logs it. Emission is best-effort relative to the
// operation that produced it: the state change has already committed, so a
// failed append is logged and swallowed rather than unwinding the operation.
func (s *service) Emit(ctx context.Context, kind string, payload models.JSON) {
	event := &models.ChangeEvent{
		EventID: uuid.NewString(),
		Kind:    kind,
		Payload: payload,
	}

	if err := s.repo.Create(event); err != nil {
		s.logger.Error().Err(err).Str("kind", kind).Msg("failed to record change event")
		return
	}

	s.logger.Info().
		Str("event_id", event.EventID).
		Str("kind", kind).
		Fields(map[string]interface{}(payload)).
		Msg("change event")
}

// Noop discards all events. Useful in tests.
type Noop struct{}

func (Noop) Emit(context.Context, string, models.JSON) {}
