package uniform

import (
	"context"

	"sqnportal/internal/adapters/storage"
	domain "sqnportal/internal/domain/uniform"
)

// Store persists uniform-store stock items.
type Store interface {
	// Save inserts or updates an item.
	// PRE: i is a valid Item
	// POST: item is persisted
	Save(ctx context.Context, i domain.Item) error

	// GetByID retrieves an item by ID.
	// PRE: id is non-empty
	// POST: returns the item or a not-found error
	GetByID(ctx context.Context, id string) (domain.Item, error)

	// List returns all items ordered newest first.
	// PRE: none
	// POST: returns items or empty slice
	List(ctx context.Context) ([]domain.Item, error)

	// Delete removes an item.
	// PRE: id is non-empty
	// POST: item is deleted, or a not-found error
	Delete(ctx context.Context, id string) error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
