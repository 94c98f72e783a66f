package cadet

import (
	"errors"
	"strings"
)

// Domain errors.
var (
	ErrEmptySqn      = errors.New("cadet squadron cannot be empty")
	ErrEmptyRank     = errors.New("cadet rank cannot be empty")
	ErrEmptyFullName = errors.New("cadet full name cannot be empty")
)

// Cadet is an identity record referenced by radio assessments. Cadets are
// not portal users; the serial is optional because cadets added directly
// into a cohort may not have one on file yet.
type Cadet struct {
	ID       string
	Serial   string // optional
	Sqn      string
	Rank     string
	FullName string
}

// Validate checks if the Cadet has valid data.
// PRE: Cadet struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Cadet) Validate() error {
	if strings.TrimSpace(c.Sqn) == "" {
		return ErrEmptySqn
	}
	if strings.TrimSpace(c.Rank) == "" {
		return ErrEmptyRank
	}
	if strings.TrimSpace(c.FullName) == "" {
		return ErrEmptyFullName
	}
	return nil
}
