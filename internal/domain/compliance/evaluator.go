package compliance

import (
	"context"
	"time"

	"github.com/verdello/traintrack/internal/domain/model"
	"github.com/verdello/traintrack/pkg/logger"
	"github.com/verdello/traintrack/pkg/metrics"
)

// InvalidEventMode selects how the evaluator treats malformed events.
type InvalidEventMode uint8

const (
	// SkipInvalid drops malformed events, reports each through the violation
	// handler and keeps aggregating the valid ones. This is the default.
	SkipInvalid InvalidEventMode = iota

	// AbortOnInvalid fails the whole evaluation on the first malformed event.
	AbortOnInvalid
)

// Summary is the derived compliance state for one user. It is recomputed on
// demand and never persisted: a pure function of (events, policy, as-of date).
type Summary struct {
	TotalHoursInWindow   float64   `json:"total_hours_in_window"`
	LiveHoursInWindow    float64   `json:"live_hours_in_window"`
	LiveRatio            float64   `json:"live_ratio"`
	RequiredHours        float64   `json:"required_hours"`
	IsCompliant          bool      `json:"is_compliant"`
	IsLiveRatioCompliant bool      `json:"is_live_ratio_compliant"`
	IsAtRiskNextYear     bool      `json:"is_at_risk_next_year"`
	WindowStart          time.Time `json:"window_start"`
	AsOf                 time.Time `json:"as_of"`
}

// ViolationHandler receives each malformed event found while aggregating in
// SkipInvalid mode.
type ViolationHandler func(ctx context.Context, err *model.ValidationError)

// Evaluator computes compliance summaries from a user's training history.
type Evaluator interface {
	// Evaluate aggregates events against policy as of the given date.
	// A zero asOf means "now".
	Evaluate(ctx context.Context, events []model.TrainingEvent, policy Policy, asOf time.Time) (Summary, error)

	// YearlyHours returns the hours-per-calendar-year series over the window.
	YearlyHours(ctx context.Context, events []model.TrainingEvent, policy Policy, asOf time.Time) ([]YearHours, error)
}

// Option applies a configuration option to the WindowEvaluator.
type Option func(*WindowEvaluator)

// WithInvalidEventMode sets the malformed-event handling mode.
func WithInvalidEventMode(mode InvalidEventMode) Option {
	return func(e *WindowEvaluator) {
		e.invalidMode = mode
	}
}

// WithViolationHandler sets the callback invoked for each skipped event.
func WithViolationHandler(h ViolationHandler) Option {
	return func(e *WindowEvaluator) {
		if h != nil {
			e.onViolation = h
		}
	}
}

// WithLogger sets a custom logger for the default violation handler.
func WithLogger(l logger.Logger) Option {
	return func(e *WindowEvaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WindowEvaluator implements Evaluator over an inclusive rolling window.
// It holds no mutable state and is safe for concurrent use.
type WindowEvaluator struct {
	invalidMode InvalidEventMode
	onViolation ViolationHandler
	logger      logger.Logger
}

// NewWindowEvaluator creates an evaluator with configuration options.
func NewWindowEvaluator(opts ...Option) *WindowEvaluator {
	e := &WindowEvaluator{
		invalidMode: SkipInvalid,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.onViolation == nil {
		e.onViolation = e.defaultViolationHandler
	}

	return e
}

// defaultViolationHandler logs a warning and bumps the invalid-event counter.
func (e *WindowEvaluator) defaultViolationHandler(ctx context.Context, verr *model.ValidationError) {
	metrics.RecordEventInvalid()
	if e.logger != nil {
		e.logger.Warn(ctx, "skipping invalid training event",
			logger.String("eventID", verr.EventID),
			logger.String("field", verr.Field),
			logger.String("reason", verr.Reason),
		)
	}
}

// Evaluate computes the compliance summary for one user's events.
func (e *WindowEvaluator) Evaluate(ctx context.Context, events []model.TrainingEvent, policy Policy, asOf time.Time) (Summary, error) {
	if err := policy.Validate(); err != nil {
		return Summary{}, err
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	valid, err := e.filterValid(ctx, events)
	if err != nil {
		return Summary{}, err
	}

	windowStart := asOf.AddDate(-policy.WindowYears, 0, 0)
	total, live := sumHours(valid, windowStart, asOf)

	ratio := 0.0
	if total > 0 {
		ratio = live / total
	}

	// Projection: the window shifted forward by the horizon. Events that age
	// out by then stop counting; events already dated inside the shifted
	// window still do.
	horizonEnd := asOf.AddDate(policy.AtRiskHorizonYears, 0, 0)
	horizonStart := horizonEnd.AddDate(-policy.WindowYears, 0, 0)
	projected, _ := sumHours(valid, horizonStart, horizonEnd)

	compliant := total >= policy.RequiredHours
	return Summary{
		TotalHoursInWindow:   total,
		LiveHoursInWindow:    live,
		LiveRatio:            ratio,
		RequiredHours:        policy.RequiredHours,
		IsCompliant:          compliant,
		IsLiveRatioCompliant: ratio >= policy.MinLiveRatio,
		IsAtRiskNextYear:     compliant && projected < policy.RequiredHours,
		WindowStart:          windowStart,
		AsOf:                 asOf,
	}, nil
}

// filterValid applies the configured invalid-event policy.
func (e *WindowEvaluator) filterValid(ctx context.Context, events []model.TrainingEvent) ([]model.TrainingEvent, error) {
	valid := make([]model.TrainingEvent, 0, len(events))
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			if e.invalidMode == AbortOnInvalid {
				return nil, err
			}
			if verr, ok := err.(*model.ValidationError); ok { //nolint:errorlint // Validate returns *ValidationError directly
				e.onViolation(ctx, verr)
			}
			continue
		}
		valid = append(valid, ev)
	}
	return valid, nil
}

// sumHours returns total and live hours for events dated in [start, end],
// both edges inclusive.
func sumHours(events []model.TrainingEvent, start, end time.Time) (total, live float64) {
	for _, ev := range events {
		if ev.Date.Before(start) || ev.Date.After(end) {
			continue
		}
		total += ev.Hours
		if ev.Modality == model.ModalityLive {
			live += ev.Hours
		}
	}
	return total, live
}
