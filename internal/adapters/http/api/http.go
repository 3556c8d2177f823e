// Package api exposes the HTTP surface: event intake, compliance reads,
// competency recycling, stats, and health.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/verdello/traintrack/internal/adapters/repository"
	"github.com/verdello/traintrack/internal/domain/compliance"
	"github.com/verdello/traintrack/internal/domain/dedupe"
	"github.com/verdello/traintrack/internal/domain/model"
	"github.com/verdello/traintrack/internal/domain/recycling"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an event for async intake. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.TrainingEvent) bool

	// Read operations over the training log and derived state.
	Summary(ctx context.Context, userID string, asOf time.Time) (compliance.Summary, error)
	YearlySummary(ctx context.Context, userID string, asOf time.Time) ([]compliance.YearHours, error)
	ListEvents(ctx context.Context, userID string) ([]model.TrainingEvent, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error

	// Competency operations for recycling reads.
	PutCompetency(ctx context.Context, c recycling.Competency) error
	ListCompetencies(ctx context.Context, userID string) ([]recycling.Competency, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	eventsHandler     *EventsHandler
	complianceHandler *ComplianceHandler
	userEventsHandler *UserEventsHandler
	recyclingHandler  *RecyclingHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		eventsHandler:     NewEventsHandler(deps),
		complianceHandler: NewComplianceHandler(deps),
		userEventsHandler: NewUserEventsHandler(deps),
		recyclingHandler:  NewRecyclingHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/compliance/", MetricsMiddleware(s.complianceHandler.HandleGetCompliance, "compliance"))
	mux.HandleFunc("/users/", MetricsMiddleware(s.userEventsHandler.HandleUserEvents, "user_events"))
	mux.HandleFunc("/competencies", MetricsMiddleware(s.recyclingHandler.HandlePostCompetency, "competencies"))
	mux.HandleFunc("/recycling/", MetricsMiddleware(s.recyclingHandler.HandleGetRecycling, "recycling"))
}

// acceptedDateFormats are the wire formats accepted for event dates and the
// as_of query parameter.
var acceptedDateFormats = []string{"2006-01-02", time.RFC3339}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range acceptedDateFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// eventRequest mirrors the wire schema for POST /events.
type eventRequest struct {
	EventID  string  `json:"event_id"`
	UserID   string  `json:"user_id"`
	Date     string  `json:"date"`
	Hours    float64 `json:"hours"`
	Modality string  `json:"modality"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(e.Date) == "":
		return errors.New("missing date")
	case strings.TrimSpace(e.Modality) == "":
		return errors.New("missing modality")
	}
	if _, err := parseDate(e.Date); err != nil {
		return errors.New("invalid date; must be YYYY-MM-DD or RFC3339")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// asOfParam parses the optional as_of query parameter. A zero time means
// "evaluate as of now".
func asOfParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Time{}, nil
	}
	return parseDate(raw)
}
