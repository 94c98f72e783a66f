package uniform

import (
	"errors"
	"strings"
	"time"
)

// Condition constants for uniform-store stock.
const (
	ConditionNew  = "new"
	ConditionGood = "good"
	ConditionWorn = "worn"
)

// ValidConditions contains all valid condition values.
var ValidConditions = []string{ConditionNew, ConditionGood, ConditionWorn}

// Domain errors.
var (
	ErrEmptyType        = errors.New("uniform item type cannot be empty")
	ErrEmptySize        = errors.New("uniform item size cannot be empty")
	ErrInvalidCondition = errors.New("condition must be one of: new, good, worn")
	ErrEmptyAddedBy     = errors.New("uniform item must record who added it")
)

// Item is a single piece of uniform-store stock.
type Item struct {
	ID        string
	Type      string // e.g. "wedgewood shirt", "beret"
	Size      string
	Condition string
	AddedByID string // user ID
	AddedAt   time.Time
}

// Validate checks if the Item has valid data.
// PRE: Item struct is populated
// POST: Returns nil if valid, error otherwise
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Type) == "" {
		return ErrEmptyType
	}
	if strings.TrimSpace(i.Size) == "" {
		return ErrEmptySize
	}
	if !isValidCondition(i.Condition) {
		return ErrInvalidCondition
	}
	if i.AddedByID == "" {
		return ErrEmptyAddedBy
	}
	return nil
}

func isValidCondition(c string) bool {
	for _, v := range ValidConditions {
		if c == v {
			return true
		}
	}
	return false
}
