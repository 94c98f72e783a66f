package duty

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Attendance status constants for each duty role.
const (
	StatusUnconfirmed = "unconfirmed"
	StatusAttended    = "attended"
	StatusAbsent      = "absent"
)

// Display colors derived from the two role statuses.
const (
	ColorConfirmed = "confirmed" // both roles attended
	ColorAttention = "attention" // at least one role absent
	ColorPending   = "pending"   // anything still unconfirmed
)

// Duty roles.
const (
	RoleSenior = "senior"
	RoleJunior = "junior"
)

// Domain errors.
var (
	ErrEmptyDate              = errors.New("duty date cannot be empty")
	ErrZeroDate               = errors.New("duty date cannot be zero")
	ErrEmptySenior            = errors.New("duty senior is required")
	ErrEmptyJunior            = errors.New("duty junior is required")
	ErrSamePerson             = errors.New("duty senior and duty junior cannot be the same person")
	ErrInvalidStatus          = errors.New("status must be one of: unconfirmed, attended, absent")
	ErrAbsentNeedsReplacement = errors.New("a replacement must be assigned before marking the original assignee absent")
	ErrOriginalImmutable      = errors.New("original assignees cannot be changed once set")
)

// Rota represents one calendar day's duty assignment.
//
// The original senior/junior record who was first assigned to the day; the
// actual pair records who ultimately covered it after any absence
// substitution. Statuses track per-role attendance confirmation.
//
// INVARIANT: DutyDate is UTC midnight (see NormalizeDate).
// INVARIANT: OriginalSeniorID != OriginalJuniorID and ActualSeniorID != ActualJuniorID.
// INVARIANT: At most one Rota exists per DutyDate (enforced by the store).
type Rota struct {
	ID               string
	DutyDate         time.Time
	OriginalSeniorID string
	OriginalJuniorID string
	ActualSeniorID   string
	ActualJuniorID   string
	SeniorStatus     string
	JuniorStatus     string
}

// New creates a Rota for a first-ever assignment on a date.
// The originals default to the supplied actual assignees and both statuses
// start unconfirmed.
// PRE: date is UTC midnight, seniorID != juniorID
func New(date time.Time, seniorID, juniorID string) Rota {
	return Rota{
		DutyDate:         date,
		OriginalSeniorID: seniorID,
		OriginalJuniorID: juniorID,
		ActualSeniorID:   seniorID,
		ActualJuniorID:   juniorID,
		SeniorStatus:     StatusUnconfirmed,
		JuniorStatus:     StatusUnconfirmed,
	}
}

// Validate checks the rota's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (r *Rota) Validate() error {
	if r.DutyDate.IsZero() {
		return ErrZeroDate
	}
	if r.ActualSeniorID == "" {
		return ErrEmptySenior
	}
	if r.ActualJuniorID == "" {
		return ErrEmptyJunior
	}
	if r.ActualSeniorID == r.ActualJuniorID {
		return ErrSamePerson
	}
	if r.OriginalSeniorID != "" && r.OriginalSeniorID == r.OriginalJuniorID {
		return ErrSamePerson
	}
	if !isValidStatus(r.SeniorStatus) || !isValidStatus(r.JuniorStatus) {
		return ErrInvalidStatus
	}
	return nil
}

// Reassign replaces the actual assignees. The original pair never changes.
// PRE: seniorID != juniorID, both non-empty
// POST: ActualSeniorID/ActualJuniorID updated
func (r *Rota) Reassign(seniorID, juniorID string) error {
	if seniorID == "" {
		return ErrEmptySenior
	}
	if juniorID == "" {
		return ErrEmptyJunior
	}
	if seniorID == juniorID {
		return ErrSamePerson
	}
	r.ActualSeniorID = seniorID
	r.ActualJuniorID = juniorID
	return nil
}

// SetSeniorStatus updates the senior attendance status. Marking the senior
// absent is only allowed once a replacement has been assigned, so an absent
// original never remains listed as the actual cover.
// PRE: status is a valid status constant
// POST: SeniorStatus updated, or error and no mutation
func (r *Rota) SetSeniorStatus(status string) error {
	if !isValidStatus(status) {
		return ErrInvalidStatus
	}
	if status == StatusAbsent && r.ActualSeniorID == r.OriginalSeniorID {
		return ErrAbsentNeedsReplacement
	}
	r.SeniorStatus = status
	return nil
}

// SetJuniorStatus updates the junior attendance status, with the same
// replacement rule as SetSeniorStatus.
// PRE: status is a valid status constant
// POST: JuniorStatus updated, or error and no mutation
func (r *Rota) SetJuniorStatus(status string) error {
	if !isValidStatus(status) {
		return ErrInvalidStatus
	}
	if status == StatusAbsent && r.ActualJuniorID == r.OriginalJuniorID {
		return ErrAbsentNeedsReplacement
	}
	r.JuniorStatus = status
	return nil
}

// Color derives the calendar display color from the two role statuses.
// This is a presentation hint and is never persisted.
// INVARIANT: Rota fields are not mutated
func (r *Rota) Color() string {
	if r.SeniorStatus == StatusAbsent || r.JuniorStatus == StatusAbsent {
		return ColorAttention
	}
	if r.SeniorStatus == StatusAttended && r.JuniorStatus == StatusAttended {
		return ColorConfirmed
	}
	return ColorPending
}

// RoleOf returns the duty role the given user holds on this day, or "" if
// they are not an actual assignee.
// INVARIANT: Rota fields are not mutated
func (r *Rota) RoleOf(userID string) string {
	switch userID {
	case r.ActualSeniorID:
		return RoleSenior
	case r.ActualJuniorID:
		return RoleJunior
	default:
		return ""
	}
}

// UserStats aggregates attended duties for one user. Users with no attended
// duties still get an entry with zero counts.
type UserStats struct {
	UserID       string `json:"id"`
	FullName     string `json:"fullName"`
	SeniorDuties int    `json:"seniorDuties"`
	JuniorDuties int    `json:"juniorDuties"`
	TotalDuties  int    `json:"totalDuties"`
}

// DateFormat is the canonical wire and storage format for duty dates.
const DateFormat = "2006-01-02"

// NormalizeDate parses a client-supplied date into UTC midnight of the civil
// date it names. Plain "YYYY-MM-DD" strings name that calendar day directly;
// RFC 3339 timestamps resolve to the UTC calendar date of the instant. Local
// zone rules never participate, so the same calendar day can never split into
// two stored rows across timezones or DST transitions.
// PRE: input is "YYYY-MM-DD" or RFC 3339
// POST: result has zero clock fields and Location() == time.UTC
func NormalizeDate(input string) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}
	if t, err := time.Parse(DateFormat, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), nil
}

func isValidStatus(s string) bool {
	return s == StatusUnconfirmed || s == StatusAttended || s == StatusAbsent
}
