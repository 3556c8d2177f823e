package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/verdello/traintrack/internal/domain/recycling"
)

// RecyclingDependencies defines the interface for competency operations.
type RecyclingDependencies interface {
	PutCompetency(ctx context.Context, c recycling.Competency) error
	ListCompetencies(ctx context.Context, userID string) ([]recycling.Competency, error)
}

// RecyclingHandler serves competency registration and recycling status.
type RecyclingHandler struct {
	deps RecyclingDependencies
}

// NewRecyclingHandler creates a new recycling handler.
func NewRecyclingHandler(deps RecyclingDependencies) *RecyclingHandler {
	return &RecyclingHandler{deps: deps}
}

// competencyRequest mirrors the wire schema for POST /competencies.
type competencyRequest struct {
	UserID             string `json:"user_id"`
	SkillID            string `json:"skill_id"`
	Level              string `json:"level"`
	EvaluationDate     string `json:"evaluation_date"`
	LatestPracticeDate string `json:"latest_practice_date"`
	ValidityMonths     int    `json:"validity_months"`
}

func (c competencyRequest) validate() error {
	switch {
	case strings.TrimSpace(c.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(c.SkillID) == "":
		return errors.New("missing skill_id")
	case strings.TrimSpace(c.EvaluationDate) == "":
		return errors.New("missing evaluation_date")
	case c.ValidityMonths < 0:
		return errors.New("validity_months must not be negative")
	}
	if _, err := parseDate(c.EvaluationDate); err != nil {
		return errors.New("invalid evaluation_date; must be YYYY-MM-DD or RFC3339")
	}
	if c.LatestPracticeDate != "" {
		if _, err := parseDate(c.LatestPracticeDate); err != nil {
			return errors.New("invalid latest_practice_date; must be YYYY-MM-DD or RFC3339")
		}
	}
	return nil
}

// HandlePostCompetency handles POST /competencies requests. Posting a
// competency for an existing (user_id, skill_id) pair replaces it.
func (h *RecyclingHandler) HandlePostCompetency(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_competency"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req competencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	evalDate, _ := parseDate(req.EvaluationDate)
	var practiceDate time.Time
	if req.LatestPracticeDate != "" {
		practiceDate, _ = parseDate(req.LatestPracticeDate)
	}
	c := recycling.Competency{
		UserID:             req.UserID,
		SkillID:            req.SkillID,
		Level:              req.Level,
		EvaluationDate:     evalDate,
		LatestPracticeDate: practiceDate,
		ValidityMonths:     req.ValidityMonths,
	}
	if err := h.deps.PutCompetency(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, ackResponse{Status: "stored"})
}

// HandleGetRecycling handles GET /recycling/{user_id} requests. An optional
// as_of query parameter pins the reference date; it defaults to now.
func (h *RecyclingHandler) HandleGetRecycling(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recycling"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/recycling/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	asOf, err := asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	competencies, err := h.deps.ListCompetencies(r.Context(), userID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	entries := make([]recyclingEntry, 0, len(competencies))
	for _, c := range competencies {
		entries = append(entries, newRecyclingEntry(c, asOf))
	}
	writeJSON(w, http.StatusOK, recyclingResponse{UserID: userID, AsOf: asOf, Competencies: entries})
}

// recyclingEntry is the read shape for a single competency with its
// recycling deadlines resolved against as_of.
type recyclingEntry struct {
	SkillID     string           `json:"skill_id"`
	Level       string           `json:"level,omitempty"`
	Status      recycling.Status `json:"status"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	WarningDate *time.Time       `json:"warning_date,omitempty"`
}

func newRecyclingEntry(c recycling.Competency, asOf time.Time) recyclingEntry {
	e := recyclingEntry{
		SkillID: c.SkillID,
		Level:   c.Level,
		Status:  c.Status(asOf),
	}
	if due := c.DueDate(); !due.IsZero() {
		warn := c.WarningDate()
		e.DueDate = &due
		e.WarningDate = &warn
	}
	return e
}

type recyclingResponse struct {
	UserID       string           `json:"user_id"`
	AsOf         time.Time        `json:"as_of"`
	Competencies []recyclingEntry `json:"competencies"`
}
