package cadet

import (
	"context"

	"sqnportal/internal/adapters/storage"
	domain "sqnportal/internal/domain/cadet"
)

// Store persists cadet identity records.
type Store interface {
	// Save inserts or updates a cadet.
	// PRE: c is a valid Cadet
	// POST: cadet is persisted
	Save(ctx context.Context, c domain.Cadet) error

	// GetByID retrieves a cadet by ID.
	// PRE: id is non-empty
	// POST: returns the cadet or a not-found error
	GetByID(ctx context.Context, id string) (domain.Cadet, error)

	// List returns all cadets ordered by full name.
	// PRE: none
	// POST: returns cadets or empty slice
	List(ctx context.Context) ([]domain.Cadet, error)

	// ListByIDs returns the cadets with the given IDs, keyed by ID.
	// PRE: none
	// POST: returns a map; missing IDs are simply absent
	ListByIDs(ctx context.Context, ids []string) (map[string]domain.Cadet, error)

	// Delete removes a cadet.
	// PRE: id is non-empty
	// POST: cadet is deleted, or a not-found error
	Delete(ctx context.Context, id string) error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
