package events

import "time"

// Event is an owned, schedulable item other users can register for. The
// owner is the creator and never changes.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location,omitempty"`
	Image       string    `json:"image,omitempty"`
	OwnerID     int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Bounds for optional free-text fields.
const (
	MaxDescriptionLength = 500
	MaxLocationLength    = 200
)

// Input is the mutable field set accepted on create and update. Image is
// filled in by the transport layer after the upload collaborator has stored
// the binary; the core only ever sees the opaque reference.
type Input struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"max=500"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"max=200"`
	Image       string `json:"-"`
}
