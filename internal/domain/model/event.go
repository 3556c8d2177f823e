// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Modality distinguishes how a training was delivered.
type Modality string

// Supported training modalities.
const (
	ModalityLive   Modality = "LIVE"
	ModalityRemote Modality = "REMOTE"
)

// Valid reports whether m is a known modality.
func (m Modality) Valid() bool {
	return m == ModalityLive || m == ModalityRemote
}

// ParseModality converts a wire value into a Modality.
// Accepts case-insensitive "live"/"remote".
func ParseModality(s string) (Modality, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ModalityLive):
		return ModalityLive, nil
	case string(ModalityRemote):
		return ModalityRemote, nil
	default:
		return "", fmt.Errorf("unknown modality: %q", s)
	}
}

// TrainingEvent is one dated, hour-valued training record credited to a user.
// Events are immutable once stored; administrative edits are modeled as a
// delete followed by a fresh ingest.
type TrainingEvent struct {
	EventID  string    // unique id for idempotency
	UserID   string    // owning user (foreign reference, not owned)
	Date     time.Time // calendar date of the event
	Hours    float64   // non-negative training hours credited
	Modality Modality  // live or remote delivery
}

// NewTrainingEvent builds a validated TrainingEvent.
func NewTrainingEvent(eventID, userID string, date time.Time, hours float64, modality Modality) (TrainingEvent, error) {
	e := TrainingEvent{
		EventID:  eventID,
		UserID:   userID,
		Date:     date,
		Hours:    hours,
		Modality: modality,
	}
	if err := e.Validate(); err != nil {
		return TrainingEvent{}, err
	}
	return e, nil
}

// Validate re-checks an already-built event. It returns a *ValidationError
// naming the offending field, so callers can choose to skip or abort.
func (e TrainingEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return &ValidationError{EventID: e.EventID, Field: "user_id", Reason: "must not be empty"}
	case e.Date.IsZero():
		return &ValidationError{EventID: e.EventID, Field: "date", Reason: "must be set"}
	case e.Hours < 0:
		return &ValidationError{EventID: e.EventID, Field: "hours", Reason: fmt.Sprintf("must be non-negative, got %v", e.Hours)}
	case !e.Modality.Valid():
		return &ValidationError{EventID: e.EventID, Field: "modality", Reason: fmt.Sprintf("must be LIVE or REMOTE, got %q", e.Modality)}
	}
	return nil
}
