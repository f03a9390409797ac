package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/server/internal/domain/events"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	events events.Repository
	logger zerolog.Logger
}

func NewService(repo Repository, eventsRepo events.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: eventsRepo,
		logger: logger.With().Str("component", "registrations").Logger(),
	}
}

// Register creates a registration for the given event and user. The
// existence check and duplicate probe run before the insert for clean
// errors; the foreign key and the UNIQUE(event_id, user_id) constraint are
// the authoritative guards underneath.
func (s *Service) Register(ctx context.Context, eventID, userID int64) (Registration, events.Event, error) {
	event, err := s.events.Get(ctx, eventID)
	if errors.Is(err, events.ErrNotFound) {
		return Registration{}, events.Event{}, ErrEventMissing
	} else if err != nil {
		return Registration{}, events.Event{}, fmt.Errorf("check event: %w", err)
	}

	if _, err := s.repo.FindActive(ctx, eventID, userID); err == nil {
		return Registration{}, events.Event{}, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return Registration{}, events.Event{}, fmt.Errorf("check registration: %w", err)
	}

	registration, err := s.repo.Create(ctx, eventID, userID)
	if err != nil {
		return Registration{}, events.Event{}, err
	}

	s.logger.Info().
		Int64("registration_id", registration.ID).
		Int64("event_id", eventID).
		Int64("user_id", userID).
		Msg("registration created")
	return registration, event, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Registration, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByEvent(ctx context.Context, eventID int64) ([]Attendee, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]UserRegistration, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Cancel hard-deletes the registration. Re-registering afterwards succeeds
// because no row remains to occupy the uniqueness slot.
func (s *Service) Cancel(ctx context.Context, id int64) (bool, error) {
	cancelled, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return false, fmt.Errorf("cancel registration: %w", err)
	}
	if cancelled {
		s.logger.Info().Int64("registration_id", id).Msg("registration cancelled")
	}
	return cancelled, nil
}

func (s *Service) IsOwnedBy(ctx context.Context, id, userID int64) (bool, error) {
	return s.repo.IsOwnedBy(ctx, id, userID)
}
