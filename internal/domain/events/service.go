package events

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly/server/internal/validation"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, &validation.Error{Fields: map[string]string{"date": "must be a valid timestamp"}}
}

func (s *Service) Create(ctx context.Context, ownerID int64, input Input) (Event, error) {
	if err := validation.Struct(input); err != nil {
		return Event{}, err
	}
	date, err := parseDate(input.Date)
	if err != nil {
		return Event{}, err
	}

	event, err := s.repo.Create(ctx, CreateParams{
		Title:       input.Title,
		Description: input.Description,
		Date:        date,
		Location:    input.Location,
		Image:       input.Image,
		OwnerID:     ownerID,
	})
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Int64("event_id", event.ID).Int64("owner_id", ownerID).Msg("event created")
	return event, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Event, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, ownerID *int64) ([]Event, error) {
	return s.repo.List(ctx, ownerID)
}

// Update re-validates the fields and refreshes the updated timestamp. The
// caller must already have confirmed existence and ownership. The stored
// image is preserved unless the input carries a replacement; when it does,
// the previous reference is returned so the caller can release the file.
func (s *Service) Update(ctx context.Context, id int64, input Input) (Event, string, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Event{}, "", err
	}

	if err := validation.Struct(input); err != nil {
		return Event{}, "", err
	}
	date, err := parseDate(input.Date)
	if err != nil {
		return Event{}, "", err
	}

	image := existing.Image
	previousImage := ""
	if input.Image != "" && input.Image != existing.Image {
		image = input.Image
		previousImage = existing.Image
	}

	updated, err := s.repo.Update(ctx, id, UpdateParams{
		Title:       input.Title,
		Description: input.Description,
		Date:        date,
		Location:    input.Location,
		Image:       image,
	})
	if err != nil {
		return Event{}, "", fmt.Errorf("update event: %w", err)
	}
	return updated, previousImage, nil
}

// Delete removes the event; registrations go with it via the storage
// cascade. Returns the event's image reference so the caller can release
// the stored binary after a successful delete.
func (s *Service) Delete(ctx context.Context, id int64) (string, bool, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", false, err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("delete event: %w", err)
	}
	if deleted {
		s.logger.Info().Int64("event_id", id).Msg("event deleted")
	}
	return existing.Image, deleted, nil
}

func (s *Service) IsOwnedBy(ctx context.Context, id, userID int64) (bool, error) {
	return s.repo.IsOwnedBy(ctx, id, userID)
}
