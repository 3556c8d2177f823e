package compliance

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is the sentinel kind wrapped by every ConfigurationError.
var ErrInvalidPolicy = errors.New("invalid compliance policy")

// ConfigurationError reports an invalid CompliancePolicy. It is fatal for the
// evaluation that received it and must not silently degrade.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidPolicy, e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidPolicy).
func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidPolicy
}
