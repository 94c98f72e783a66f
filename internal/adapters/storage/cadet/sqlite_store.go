package cadet

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"sqnportal/internal/adapters/storage"
	"sqnportal/internal/apperr"
	domain "sqnportal/internal/domain/cadet"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a cadet.
// PRE: c is a valid Cadet
// POST: cadet is persisted
func (s *SQLiteStore) Save(ctx context.Context, c domain.Cadet) error {
	var serial any
	if c.Serial != "" {
		serial = c.Serial
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cadet (id, serial, sqn, rank, full_name)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   serial=excluded.serial, sqn=excluded.sqn, rank=excluded.rank,
		   full_name=excluded.full_name`,
		c.ID, serial, c.Sqn, c.Rank, c.FullName)
	return err
}

// GetByID retrieves a cadet by ID.
// PRE: id is non-empty
// POST: returns the cadet or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Cadet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, serial, sqn, rank, full_name FROM cadet WHERE id = ?`, id)
	return scanCadet(row.Scan)
}

// List returns all cadets ordered by full name.
// PRE: none
// POST: returns cadets or empty slice
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Cadet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, serial, sqn, rank, full_name FROM cadet ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.Cadet
	for rows.Next() {
		c, err := scanCadet(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ListByIDs returns the cadets with the given IDs, keyed by ID.
// PRE: none
// POST: returns a map; missing IDs are simply absent
func (s *SQLiteStore) ListByIDs(ctx context.Context, ids []string) (map[string]domain.Cadet, error) {
	result := make(map[string]domain.Cadet)
	if len(ids) == 0 {
		return result, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, serial, sqn, rank, full_name FROM cadet WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCadet(rows.Scan)
		if err != nil {
			return nil, err
		}
		result[c.ID] = c
	}
	return result, rows.Err()
}

// Delete removes a cadet.
// PRE: id is non-empty
// POST: cadet is deleted, or a not-found error
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cadet WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "cadet not found")
	}
	return nil
}

func scanCadet(scan func(dest ...any) error) (domain.Cadet, error) {
	var c domain.Cadet
	var serial sql.NullString
	err := scan(&c.ID, &serial, &c.Sqn, &c.Rank, &c.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cadet{}, apperr.New(apperr.KindNotFound, "cadet not found")
	}
	if err != nil {
		return domain.Cadet{}, err
	}
	c.Serial = serial.String
	return c, nil
}
