package duty

import (
	"context"
	"time"

	"sqnportal/internal/adapters/storage"
	domain "sqnportal/internal/domain/duty"
)

// Store persists duty rota rows. Each row is keyed by its civil duty date;
// the table enforces one row per date.
type Store interface {
	// Save inserts or updates a rota row by ID.
	// PRE: r is a valid Rota
	// POST: row is persisted; a second row for the same date is a conflict
	Save(ctx context.Context, r domain.Rota) error

	// GetByDate retrieves the rota row for a civil date.
	// PRE: date is non-zero
	// POST: returns the row or a not-found error
	GetByDate(ctx context.Context, date time.Time) (domain.Rota, error)

	// DeleteByDate removes the rota row for a civil date.
	// PRE: date is non-zero
	// POST: row is deleted, or a not-found error if no row exists
	DeleteByDate(ctx context.Context, date time.Time) error

	// List returns all rota rows ordered by date ascending.
	// PRE: none
	// POST: returns rows or empty slice
	List(ctx context.Context) ([]domain.Rota, error)

	// ListByUser returns rota rows where the user appears in any slot,
	// ordered by date ascending.
	// PRE: userID is non-empty
	// POST: returns rows or empty slice
	ListByUser(ctx context.Context, userID string) ([]domain.Rota, error)

	// CountAttendedSenior returns attended senior-slot duty counts per user.
	// PRE: none
	// POST: returns a map of user ID to count; users with none are absent
	CountAttendedSenior(ctx context.Context) (map[string]int, error)

	// CountAttendedJunior returns attended junior-slot duty counts per user.
	// PRE: none
	// POST: returns a map of user ID to count; users with none are absent
	CountAttendedJunior(ctx context.Context) (map[string]int, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
