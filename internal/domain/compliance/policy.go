// Package compliance implements the continuous-training compliance rules:
// rolling-window hour aggregation, live-ratio checks and the one-horizon-ahead
// at-risk projection.
package compliance

// Default policy constants. The required total is three seven-hour training
// days inside a six-year window, with at least a third of it delivered live.
const (
	defaultWindowYears        = 6
	defaultRequiredHours      = 21
	defaultMinLiveRatio       = 1.0 / 3.0
	defaultAtRiskHorizonYears = 1
)

// Policy is the compliance configuration applied to an evaluation. There is
// no ambient process-wide policy; every call receives its Policy explicitly.
type Policy struct {
	// WindowYears is the rolling look-back window length in years.
	WindowYears int

	// RequiredHours is the total hours required within the window.
	RequiredHours float64

	// MinLiveRatio is the minimum fraction of hours that must be live.
	MinLiveRatio float64

	// AtRiskHorizonYears is the lead time used to flag future risk.
	AtRiskHorizonYears int
}

// DefaultPolicy returns the stock regulatory policy.
func DefaultPolicy() Policy {
	return Policy{
		WindowYears:        defaultWindowYears,
		RequiredHours:      defaultRequiredHours,
		MinLiveRatio:       defaultMinLiveRatio,
		AtRiskHorizonYears: defaultAtRiskHorizonYears,
	}
}

// Validate checks policy bounds. A violation returns a *ConfigurationError,
// which wraps ErrInvalidPolicy.
func (p Policy) Validate() error {
	switch {
	case p.WindowYears <= 0:
		return &ConfigurationError{Field: "window_years", Reason: "must be positive"}
	case p.RequiredHours < 0:
		return &ConfigurationError{Field: "required_hours", Reason: "must be non-negative"}
	case p.MinLiveRatio < 0 || p.MinLiveRatio > 1:
		return &ConfigurationError{Field: "min_live_ratio", Reason: "must be within [0, 1]"}
	case p.AtRiskHorizonYears < 0:
		return &ConfigurationError{Field: "at_risk_horizon_years", Reason: "must be non-negative"}
	}
	return nil
}
