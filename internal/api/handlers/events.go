package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/domain/authz"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/metrics"
	"github.com/gatherly/server/internal/uploads"
)

// EventsHandler serves event CRUD plus image upload and cleanup.
type EventsHandler struct {
	events *events.Service
	images *uploads.Store
	env    string
}

func NewEventsHandler(eventsService *events.Service, images *uploads.Store, env string) *EventsHandler {
	return &EventsHandler{events: eventsService, images: images, env: env}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	var ownerID *int64
	if r.URL.Query().Get("mine") == "true" {
		user, ok := middleware.CurrentUser(r.Context())
		if !ok {
			writeInternal(w, r, errors.New("no user in request context"), h.env)
			return
		}
		ownerID = &user.ID
	}

	list, err := h.events.List(r.Context(), ownerID)
	if err != nil {
		writeInternal(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": list, "total": len(list)})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventID", h.env)
	if !ok {
		return
	}

	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": event})
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeInternal(w, r, errors.New("no user in request context"), h.env)
		return
	}

	input, ok := h.readInput(w, r)
	if !ok {
		return
	}

	event, err := h.events.Create(r.Context(), user.ID, input)
	if err != nil {
		// A stored image must not outlive a rejected create.
		h.images.Remove(input.Image)
		h.writeEventError(w, r, err)
		return
	}

	metrics.EventsCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{"event": event})
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeInternal(w, r, errors.New("no user in request context"), h.env)
		return
	}
	id, ok := pathID(w, r, "eventID", h.env)
	if !ok {
		return
	}

	if _, err := h.events.Get(r.Context(), id); err != nil {
		h.writeEventError(w, r, err)
		return
	}
	if err := authz.RequireOwner(r.Context(), h.events, id, user.ID); err != nil {
		h.writeEventError(w, r, err)
		return
	}

	input, ok := h.readInput(w, r)
	if !ok {
		return
	}

	event, previousImage, err := h.events.Update(r.Context(), id, input)
	if err != nil {
		h.images.Remove(input.Image)
		h.writeEventError(w, r, err)
		return
	}

	h.images.Remove(previousImage)
	writeJSON(w, http.StatusOK, map[string]any{"event": event})
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeInternal(w, r, errors.New("no user in request context"), h.env)
		return
	}
	id, ok := pathID(w, r, "eventID", h.env)
	if !ok {
		return
	}

	if err := authz.RequireOwner(r.Context(), h.events, id, user.ID); err != nil {
		// Distinguish a missing event from someone else's event.
		if _, getErr := h.events.Get(r.Context(), id); getErr != nil {
			h.writeEventError(w, r, getErr)
			return
		}
		h.writeEventError(w, r, err)
		return
	}

	image, deleted, err := h.events.Delete(r.Context(), id)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}
	if !deleted {
		h.writeEventError(w, r, events.ErrNotFound)
		return
	}

	h.images.Remove(image)
	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// ServeImage streams a stored event image.
func (h *EventsHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	file, err := h.images.Open(r.PathValue("file"))
	if err != nil {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Not Found", nil, h.env, problem.WithDetail("no such image"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeInternal(w, r, err, h.env)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

// readInput accepts either a JSON body or a multipart form with an
// optional image part. The image is stored before validation runs, so
// callers must release input.Image when the operation fails.
func (h *EventsHandler) readInput(w http.ResponseWriter, r *http.Request) (events.Input, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var input events.Input
		if !decodeJSON(w, r, &input, h.env) {
			return events.Input{}, false
		}
		return input, true
	}

	if err := r.ParseMultipartForm(uploads.DefaultMaxBytes); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid Multipart Body", err, h.env)
		return events.Input{}, false
	}

	input := events.Input{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
		Location:    r.FormValue("location"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Image part is optional.
	case err != nil:
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
			"Invalid Image Part", err, h.env)
		return events.Input{}, false
	default:
		defer file.Close()
		ref, saveErr := h.images.Save(file, header)
		if saveErr != nil {
			if errors.Is(saveErr, uploads.ErrNotAnImage) || errors.Is(saveErr, uploads.ErrTooLarge) {
				problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation,
					"Invalid Image", saveErr, h.env,
					problem.WithDetail(saveErr.Error()))
				return events.Input{}, false
			}
			writeInternal(w, r, saveErr, h.env)
			return events.Input{}, false
		}
		input.Image = ref
	}

	return input, true
}

func (h *EventsHandler) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case writeValidationProblem(w, r, err, h.env):
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound,
			"Event Not Found", err, h.env, problem.WithDetail("no such event"))
	case errors.Is(err, authz.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
			"Forbidden", err, h.env, problem.WithDetail("only the event owner may do this"))
	default:
		writeInternal(w, r, err, h.env)
	}
}
