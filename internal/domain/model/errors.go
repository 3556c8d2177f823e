package model

import "fmt"

// ValidationError reports a malformed training event. It is recoverable:
// aggregation callers decide whether to skip the event or abort.
type ValidationError struct {
	EventID string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("invalid training event: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid training event %s: %s %s", e.EventID, e.Field, e.Reason)
}
