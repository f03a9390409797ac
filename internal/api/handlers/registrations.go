package handlers

import (
	"errors"
	"net/http"

	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/domain/authz"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/registrations"
	"github.com/gatherly/server/internal/metrics"
)

// RegistrationsHandler serves event signup, attendee listing, and
// cancellation.
type RegistrationsHandler struct {
	registrations *registrations.Service
	env           string
}

func NewRegistrationsHandler(service *registrations.Service, env string) *RegistrationsHandler {
	return &RegistrationsHandler{registrations: service, env: env}
}

func (h *RegistrationsHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeInternal(w, r, errors.New("no user in request context"), h.env)
		return
	}
	eventID, ok := pathID(w, r, "eventID", h.env)
	if !ok {
		return
	}

	registration, event, err := h.registrations.Register(r.Context(), eventID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, registrations.ErrEventMissing):
			metrics.RegistrationsTotal.WithLabelValues("missing_event").Inc()
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
				"Event Not Found", err, h.env, problem.WithDetail("no such event"))
		case errors.Is(err, registrations.ErrDuplicate):
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			problem.Write(w, r, http.StatusConflict, problem.TypeConflict,
				"Already Registered", err, h.env,
				problem.WithDetail("you are already registered for this event"))
		default:
			writeInternal(w, r, err, h.env)
		}
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusCreated, map[string]any{
		"registration": registration,
		"event":        event,
	})
}

func (h *RegistrationsHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID", h.env)
	if !ok {
		return
	}

	attendees, err := h.registrations.ListByEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
				"Event Not Found", err, h.env, problem.WithDetail("no such event"))
			return
		}
		writeInternal(w, r, err, h.env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"attendees": attendees,
		"total":     len(attendees),
	})
}

func (h *RegistrationsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeInternal(w, r, errors.New("no user in request context"), h.env)
		return
	}

	mine, err := h.registrations.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeInternal(w, r, err, h.env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"registrations": mine,
		"total":         len(mine),
	})
}

// Cancel hard-deletes the caller's registration. Only the registrant may
// cancel; the event owner removes attendees by deleting the event.
func (h *RegistrationsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeInternal(w, r, errors.New("no user in request context"), h.env)
		return
	}
	id, ok := pathID(w, r, "registrationID", h.env)
	if !ok {
		return
	}

	if _, err := h.registrations.Get(r.Context(), id); err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
				"Registration Not Found", err, h.env, problem.WithDetail("no such registration"))
			return
		}
		writeInternal(w, r, err, h.env)
		return
	}

	if err := authz.RequireOwner(r.Context(), h.registrations, id, user.ID); err != nil {
		if errors.Is(err, authz.ErrForbidden) {
			problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
				"Forbidden", err, h.env,
				problem.WithDetail("only the registrant may cancel this registration"))
			return
		}
		writeInternal(w, r, err, h.env)
		return
	}

	cancelled, err := h.registrations.Cancel(r.Context(), id)
	if err != nil {
		writeInternal(w, r, err, h.env)
		return
	}
	if !cancelled {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Registration Not Found", nil, h.env, problem.WithDetail("no such registration"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "registration cancelled"})
}
