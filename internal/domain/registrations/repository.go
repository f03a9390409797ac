package registrations

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("registration not found")

var ErrDuplicate = errors.New("already registered for this event")

// ErrEventMissing is returned when a registration references an event that
// does not exist. The foreign-key relation enforces this even when the
// caller skipped its own existence check.
var ErrEventMissing = errors.New("registered event not found")

type Repository interface {
	Create(ctx context.Context, eventID, userID int64) (Registration, error)
	Get(ctx context.Context, id int64) (Registration, error)
	// ListByEvent returns the event's registrations joined with registrant
	// username/email, newest first.
	ListByEvent(ctx context.Context, eventID int64) ([]Attendee, error)
	// ListByUser returns the user's registrations joined with event
	// title/date/location, newest first.
	ListByUser(ctx context.Context, userID int64) ([]UserRegistration, error)
	// FindActive is the uniqueness probe used before Create.
	FindActive(ctx context.Context, eventID, userID int64) (Registration, error)
	// Cancel hard-deletes the row and reports whether one existed.
	Cancel(ctx context.Context, id int64) (bool, error)
	IsOwnedBy(ctx context.Context, id, userID int64) (bool, error)
}
