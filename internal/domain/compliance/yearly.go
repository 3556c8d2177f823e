package compliance

import (
	"context"
	"time"

	"github.com/verdello/traintrack/internal/domain/model"
)

// YearHours is one bar of the per-year training history chart.
type YearHours struct {
	Year      int     `json:"year"`
	Hours     float64 `json:"hours"`
	LiveHours float64 `json:"live_hours"`
}

// YearlyHours returns hours per calendar year for the WindowYears years ending
// at asOf, oldest year first. Malformed events follow the evaluator's
// invalid-event mode, same as Evaluate.
func (e *WindowEvaluator) YearlyHours(ctx context.Context, events []model.TrainingEvent, policy Policy, asOf time.Time) ([]YearHours, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	valid, err := e.filterValid(ctx, events)
	if err != nil {
		return nil, err
	}

	firstYear := asOf.Year() - policy.WindowYears + 1
	series := make([]YearHours, 0, policy.WindowYears)
	for year := firstYear; year <= asOf.Year(); year++ {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
		total, live := sumHours(valid, start, end)
		series = append(series, YearHours{Year: year, Hours: total, LiveHours: live})
	}
	return series, nil
}
