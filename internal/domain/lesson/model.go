package lesson

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// Domain errors.
var (
	ErrEmptyTitle         = errors.New("lesson title cannot be empty")
	ErrTitleTooLong       = errors.New("lesson title cannot exceed 200 characters")
	ErrDescriptionTooLong = errors.New("lesson description cannot exceed 5000 characters")
	ErrZeroDate           = errors.New("lesson date must be set")
	ErrEmptyLessonID      = errors.New("lesson ID cannot be empty")
	ErrEmptyUserID        = errors.New("user ID cannot be empty")
	ErrEmptyFileName      = errors.New("resource file name cannot be empty")
	ErrEmptyFilePath      = errors.New("resource file path cannot be empty")
)

// Lesson is a scheduled training session. Description is markdown, rendered
// to safe HTML at the presentation boundary.
type Lesson struct {
	ID          string
	Title       string
	Description string
	LessonDate  time.Time
	CreatedBy   string // user ID
	CreatedAt   time.Time
}

// Validate checks if the Lesson has valid data.
// PRE: Lesson struct is populated
// POST: Returns nil if valid, error otherwise
func (l *Lesson) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return ErrEmptyTitle
	}
	if len(l.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if len(l.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if l.LessonDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Assignment links a user to a lesson they must attend.
// INVARIANT: At most one Assignment exists per (LessonID, UserID)
// (enforced by the store).
type Assignment struct {
	ID       string
	LessonID string
	UserID   string
}

// Validate checks if the Assignment has valid data.
// PRE: none
// POST: Returns nil if valid, error otherwise
func (a *Assignment) Validate() error {
	if a.LessonID == "" {
		return ErrEmptyLessonID
	}
	if a.UserID == "" {
		return ErrEmptyUserID
	}
	return nil
}

// Resource records a file attached to a lesson. Only the record is managed
// here; upload transport lives outside the portal.
type Resource struct {
	ID         string
	LessonID   string
	FileName   string
	FilePath   string
	UploadedAt time.Time
}

// Validate checks if the Resource has valid data.
// PRE: none
// POST: Returns nil if valid, error otherwise
func (r *Resource) Validate() error {
	if r.LessonID == "" {
		return ErrEmptyLessonID
	}
	if strings.TrimSpace(r.FileName) == "" {
		return ErrEmptyFileName
	}
	if strings.TrimSpace(r.FilePath) == "" {
		return ErrEmptyFilePath
	}
	return nil
}
