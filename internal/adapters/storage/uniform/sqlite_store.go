package uniform

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sqnportal/internal/adapters/storage"
	"sqnportal/internal/apperr"
	domain "sqnportal/internal/domain/uniform"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const timeFormat = time.RFC3339

// Save inserts or updates an item.
// PRE: i is a valid Item
// POST: item is persisted
func (s *SQLiteStore) Save(ctx context.Context, i domain.Item) error {
	var addedBy any
	if i.AddedByID != "" {
		addedBy = i.AddedByID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uniform_item (id, type, size, condition, added_by_id, added_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   type=excluded.type, size=excluded.size, condition=excluded.condition,
		   added_by_id=excluded.added_by_id, added_at=excluded.added_at`,
		i.ID, i.Type, i.Size, i.Condition, addedBy, i.AddedAt.Format(timeFormat))
	return err
}

// GetByID retrieves an item by ID.
// PRE: id is non-empty
// POST: returns the item or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, size, condition, added_by_id, added_at FROM uniform_item WHERE id = ?`, id)
	return scanItem(row.Scan)
}

// List returns all items ordered by type then size.
// PRE: none
// POST: returns items or empty slice
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, size, condition, added_by_id, added_at FROM uniform_item ORDER BY added_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.Item
	for rows.Next() {
		i, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, i)
	}
	return result, rows.Err()
}

// Delete removes an item.
// PRE: id is non-empty
// POST: item is deleted, or a not-found error
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM uniform_item WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "uniform item not found")
	}
	return nil
}

func scanItem(scan func(dest ...any) error) (domain.Item, error) {
	var i domain.Item
	var addedBy sql.NullString
	var addedAt string
	err := scan(&i.ID, &i.Type, &i.Size, &i.Condition, &addedBy, &addedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, apperr.New(apperr.KindNotFound, "uniform item not found")
	}
	if err != nil {
		return domain.Item{}, err
	}
	i.AddedByID = addedBy.String
	i.AddedAt, _ = time.Parse(timeFormat, addedAt)
	return i, nil
}
