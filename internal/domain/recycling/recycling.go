// Package recycling derives competency revalidation deadlines. A competency
// stays valid for its skill's validity period counted from the latest practice
// (or the evaluation itself, whichever is later) and enters a warning phase
// over the last quarter of that period.
package recycling

import "time"

const (
	// daysPerMonth is the average month length used for validity arithmetic,
	// matching the system of record.
	daysPerMonth = 30.44

	// warningFraction is the share of the validity period spent in warning.
	warningFraction = 0.25

	hoursPerDay = 24
)

// Status classifies a competency against its recycling deadline.
type Status string

// Recycling statuses.
const (
	StatusCurrent Status = "CURRENT"
	StatusWarning Status = "WARNING"
	StatusExpired Status = "EXPIRED"
)

// Competency is a user's evaluated skill with its revalidation inputs.
type Competency struct {
	UserID             string    `json:"user_id"`
	SkillID            string    `json:"skill_id"`
	Level              string    `json:"level"`
	EvaluationDate     time.Time `json:"evaluation_date"`
	LatestPracticeDate time.Time `json:"latest_practice_date,omitempty"`
	// ValidityMonths of zero means the skill never expires.
	ValidityMonths int `json:"validity_months"`
}

// ReferenceDate is the starting point of the validity period: the latest
// practice when one exists and is newer than the evaluation.
func (c Competency) ReferenceDate() time.Time {
	if c.LatestPracticeDate.After(c.EvaluationDate) {
		return c.LatestPracticeDate
	}
	return c.EvaluationDate
}

// DueDate is when the competency must be recycled. Zero when the skill has no
// validity period.
func (c Competency) DueDate() time.Time {
	if c.ValidityMonths <= 0 {
		return time.Time{}
	}
	return c.ReferenceDate().Add(validityDuration(c.ValidityMonths))
}

// WarningDate is when the warning phase starts, a quarter of the validity
// period ahead of the due date. Zero when the skill has no validity period.
func (c Competency) WarningDate() time.Time {
	due := c.DueDate()
	if due.IsZero() {
		return time.Time{}
	}
	warning := time.Duration(float64(validityDuration(c.ValidityMonths)) * warningFraction)
	return due.Add(-warning)
}

// Status classifies the competency as of the given date. A zero asOf means
// "now".
func (c Competency) Status(asOf time.Time) Status {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	due := c.DueDate()
	switch {
	case due.IsZero():
		return StatusCurrent
	case asOf.After(due):
		return StatusExpired
	case asOf.After(c.WarningDate()):
		return StatusWarning
	default:
		return StatusCurrent
	}
}

func validityDuration(months int) time.Duration {
	return time.Duration(float64(months) * daysPerMonth * hoursPerDay * float64(time.Hour))
}
