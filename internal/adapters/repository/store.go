// Package repository defines the training event log store interface and errors.
package repository

import (
	"context"

	"github.com/verdello/traintrack/internal/domain/model"
	"github.com/verdello/traintrack/internal/domain/recycling"
)

// Store provides read/write access to the per-user training event log.
// Events are immutable once appended; administrative edits are a Delete
// followed by a fresh Append.
type Store interface {
	// Append adds an event to its user's log, kept ordered by date.
	Append(ctx context.Context, e model.TrainingEvent) error

	// ListByUser returns a user's events ordered by date ascending.
	// Returns ErrNotFound for a user with no events.
	ListByUser(ctx context.Context, userID string) ([]model.TrainingEvent, error)

	// Delete removes one event from a user's log.
	// Returns ErrNotFound when the user or event is unknown.
	Delete(ctx context.Context, userID, eventID string) error

	// CountUsers returns the number of users with at least one event.
	CountUsers(ctx context.Context) int

	// CountEvents returns the total number of stored events.
	CountEvents(ctx context.Context) int
}

// CompetencyStore keeps evaluated competencies for recycling reads.
type CompetencyStore interface {
	// Put inserts or replaces the competency for (user, skill).
	Put(ctx context.Context, c recycling.Competency) error

	// ListByUser returns a user's competencies.
	// Returns ErrNotFound for an unknown user.
	ListByUser(ctx context.Context, userID string) ([]recycling.Competency, error)
}
