package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/verdello/traintrack/internal/domain/compliance"
)

// ComplianceDependencies defines the interface for compliance reads.
type ComplianceDependencies interface {
	Summary(ctx context.Context, userID string, asOf time.Time) (compliance.Summary, error)
	YearlySummary(ctx context.Context, userID string, asOf time.Time) ([]compliance.YearHours, error)
}

// ComplianceHandler handles compliance evaluation requests.
type ComplianceHandler struct {
	deps ComplianceDependencies
}

// NewComplianceHandler creates a new compliance handler.
func NewComplianceHandler(deps ComplianceDependencies) *ComplianceHandler {
	return &ComplianceHandler{deps: deps}
}

// HandleGetCompliance handles GET /compliance/{user_id} and
// GET /compliance/{user_id}/yearly requests. An optional as_of query
// parameter pins the evaluation date; it defaults to now.
func (h *ComplianceHandler) HandleGetCompliance(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_compliance"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/compliance/")
	parts := strings.Split(path, "/")
	if path == "" || parts[0] == "" || len(parts) > 2 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	userID := parts[0]

	asOf, err := asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if len(parts) == 2 {
		if parts[1] != "yearly" {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		years, err := h.deps.YearlySummary(r.Context(), userID, asOf)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, yearlyResponse{UserID: userID, Years: years})
		return
	}

	summary, err := h.deps.Summary(r.Context(), userID, asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{UserID: userID, Summary: summary})
}

type summaryResponse struct {
	UserID string `json:"user_id"`
	compliance.Summary
}

type yearlyResponse struct {
	UserID string                 `json:"user_id"`
	Years  []compliance.YearHours `json:"years"`
}
