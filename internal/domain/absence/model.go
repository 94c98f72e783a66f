package absence

import (
	"errors"
	"time"
)

// MaxReasonLength caps the optional free-text reason.
const MaxReasonLength = 500

// Domain errors.
var (
	ErrEmptyUserID    = errors.New("absence must belong to a user")
	ErrEmptyStartDate = errors.New("start date cannot be zero")
	ErrEmptyEndDate   = errors.New("end date cannot be zero")
	ErrInvalidDates   = errors.New("start date must be before or equal to end date")
	ErrReasonTooLong  = errors.New("reason cannot exceed 500 characters")
)

// Absence is a user-owned date range during which they are unavailable for
// duties and lessons.
type Absence struct {
	ID        string
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Reason    string // optional
	CreatedAt time.Time
}

// Validate checks if the Absence has valid data.
// PRE: Absence struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Absence) Validate() error {
	if a.UserID == "" {
		return ErrEmptyUserID
	}
	if a.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if a.EndDate.IsZero() {
		return ErrEmptyEndDate
	}
	if a.StartDate.After(a.EndDate) {
		return ErrInvalidDates
	}
	if len(a.Reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	return nil
}

// CanModify reports whether the caller may edit or delete this absence:
// the owning user, or any admin.
// INVARIANT: Absence fields are not mutated
func (a *Absence) CanModify(callerID string, callerIsAdmin bool) bool {
	return callerIsAdmin || a.UserID == callerID
}

// Covers returns true if the given date falls within the absence range.
// PRE: date is a valid time
// INVARIANT: Absence fields are not mutated
func (a *Absence) Covers(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	start := a.StartDate.Truncate(24 * time.Hour)
	end := a.EndDate.Truncate(24 * time.Hour)
	return (d.Equal(start) || d.After(start)) && (d.Equal(end) || d.Before(end))
}
