package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/verdello/traintrack/internal/domain/model"
)

// UserEventDependencies defines the interface for event log reads and deletes.
type UserEventDependencies interface {
	ListEvents(ctx context.Context, userID string) ([]model.TrainingEvent, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
}

// UserEventsHandler serves the per-user training log.
type UserEventsHandler struct {
	deps UserEventDependencies
}

// NewUserEventsHandler creates a new user events handler.
func NewUserEventsHandler(deps UserEventDependencies) *UserEventsHandler {
	return &UserEventsHandler{deps: deps}
}

// HandleUserEvents routes GET /users/{user_id}/events and
// DELETE /users/{user_id}/events/{event_id}.
func (h *UserEventsHandler) HandleUserEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.user_events"
	path := strings.TrimPrefix(r.URL.Path, "/users/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] != "events" {
		http.NotFound(w, r)
		return
	}
	userID := parts[0]

	switch {
	case r.Method == http.MethodGet && len(parts) == 2:
		events, err := h.deps.ListEvents(r.Context(), userID)
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		views := make([]eventView, 0, len(events))
		for _, e := range events {
			views = append(views, newEventView(e))
		}
		writeJSON(w, http.StatusOK, eventListResponse{UserID: userID, Events: views})
	case r.Method == http.MethodDelete && len(parts) == 3 && parts[2] != "":
		if err := h.deps.DeleteEvent(r.Context(), userID, parts[2]); err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "not_found", err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, ackResponse{Status: "deleted", EventID: parts[2]})
	default:
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
	}
}

// eventView is the read shape for one stored event. The domain struct stays
// tag-free; the wire schema matches the POST /events request fields.
type eventView struct {
	EventID  string    `json:"event_id"`
	UserID   string    `json:"user_id"`
	Date     time.Time `json:"date"`
	Hours    float64   `json:"hours"`
	Modality string    `json:"modality"`
}

func newEventView(e model.TrainingEvent) eventView {
	return eventView{
		EventID:  e.EventID,
		UserID:   e.UserID,
		Date:     e.Date,
		Hours:    e.Hours,
		Modality: string(e.Modality),
	}
}

type eventListResponse struct {
	UserID string      `json:"user_id"`
	Events []eventView `json:"events"`
}
