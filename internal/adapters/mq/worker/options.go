// Package worker defines worker contracts for asynchronous event intake.
package worker

import (
	"github.com/verdello/traintrack/pkg/logger"
)

// Option applies a configuration option to the IntakeWorker.
type Option func(*IntakeWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *IntakeWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithCompletionHook registers a callback invoked after each successfully
// appended event. The pool uses this to track throughput.
func WithCompletionHook(hook func()) Option {
	return func(w *IntakeWorker) {
		w.onProcessed = hook
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *IntakeWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
