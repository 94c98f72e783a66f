package absence

import (
	"context"
	"time"

	"sqnportal/internal/adapters/storage"
	domain "sqnportal/internal/domain/absence"
)

// Store persists absences.
type Store interface {
	// Save inserts or updates an absence.
	// PRE: a is a valid Absence
	// POST: absence is persisted
	Save(ctx context.Context, a domain.Absence) error

	// GetByID retrieves an absence by ID.
	// PRE: id is non-empty
	// POST: returns the absence or a not-found error
	GetByID(ctx context.Context, id string) (domain.Absence, error)

	// List returns all absences ordered by start date descending.
	// PRE: none
	// POST: returns absences or empty slice
	List(ctx context.Context) ([]domain.Absence, error)

	// ListByUser returns one user's absences ordered by start date descending.
	// PRE: userID is non-empty
	// POST: returns absences or empty slice
	ListByUser(ctx context.Context, userID string) ([]domain.Absence, error)

	// ListCovering returns absences whose range covers the given civil date.
	// PRE: date is non-zero
	// POST: returns absences or empty slice
	ListCovering(ctx context.Context, date time.Time) ([]domain.Absence, error)

	// Delete removes an absence.
	// PRE: id is non-empty
	// POST: absence is deleted, or a not-found error
	Delete(ctx context.Context, id string) error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
