package events

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

type CreateParams struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Image       string
	OwnerID     int64
}

type UpdateParams struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Image       string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (Event, error)
	Get(ctx context.Context, id int64) (Event, error)
	// List returns events ordered by date descending. A nil ownerID lists
	// all events; otherwise only the given owner's.
	List(ctx context.Context, ownerID *int64) ([]Event, error)
	Update(ctx context.Context, id int64, params UpdateParams) (Event, error)
	// Delete removes the event row; the storage-level cascade removes its
	// registrations. Reports whether a row was actually removed.
	Delete(ctx context.Context, id int64) (bool, error)
	IsOwnedBy(ctx context.Context, id, userID int64) (bool, error)
}
