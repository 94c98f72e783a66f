package user

import (
	"context"

	"sqnportal/internal/adapters/storage"
	domain "sqnportal/internal/domain/user"
)

// Store persists portal users.
type Store interface {
	// Save inserts or updates a user.
	// PRE: u is a valid User
	// POST: user is persisted; duplicate username reported as conflict
	Save(ctx context.Context, u domain.User) error

	// GetByID retrieves a user by ID.
	// PRE: id is non-empty
	// POST: returns the user or a not-found error
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByUsername retrieves a user by username.
	// PRE: username is non-empty
	// POST: returns the user or a not-found error
	GetByUsername(ctx context.Context, username string) (domain.User, error)

	// List returns all users ordered by full name.
	// PRE: none
	// POST: returns users or empty slice
	List(ctx context.Context) ([]domain.User, error)

	// DeleteCascade removes a user and every row that references them:
	// lesson assignments, duty rota rows they appear in, and absences.
	// PRE: id is non-empty
	// POST: user and dependent rows are deleted atomically, or nothing is
	DeleteCascade(ctx context.Context, id string) error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
