package registrations

import "time"

// StatusRegistered is the default and currently only registration status.
const StatusRegistered = "registered"

// Registration links one user to one event. At most one row exists per
// (event, user) pair; cancellation hard-deletes the row, freeing the slot.
type Registration struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"eventId"`
	UserID    int64     `json:"userId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Attendee is a registration joined with the registrant's account fields,
// as listed for an event.
type Attendee struct {
	Registration
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserRegistration is a registration joined with its event's summary
// fields, as listed for a user.
type UserRegistration struct {
	Registration
	EventTitle    string    `json:"eventTitle"`
	EventDate     time.Time `json:"eventDate"`
	EventLocation string    `json:"eventLocation,omitempty"`
}
