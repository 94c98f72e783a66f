package absence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sqnportal/internal/adapters/storage"
	"sqnportal/internal/apperr"
	domain "sqnportal/internal/domain/absence"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const (
	timeFormat = time.RFC3339
	dateFormat = "2006-01-02"
)

// Save inserts or updates an absence.
// PRE: a is a valid Absence
// POST: absence is persisted
func (s *SQLiteStore) Save(ctx context.Context, a domain.Absence) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO absence (id, user_id, start_date, end_date, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_id=excluded.user_id, start_date=excluded.start_date,
		   end_date=excluded.end_date, reason=excluded.reason,
		   created_at=excluded.created_at`,
		a.ID, a.UserID, a.StartDate.Format(dateFormat), a.EndDate.Format(dateFormat),
		a.Reason, a.CreatedAt.Format(timeFormat))
	return err
}

// GetByID retrieves an absence by ID.
// PRE: id is non-empty
// POST: returns the absence or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Absence, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, start_date, end_date, reason, created_at FROM absence WHERE id = ?`, id)
	return scanAbsence(row.Scan)
}

// List returns all absences ordered by start date descending.
// PRE: none
// POST: returns absences or empty slice
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Absence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, start_date, end_date, reason, created_at FROM absence ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAbsences(rows)
}

// ListByUser returns one user's absences ordered by start date descending.
// PRE: userID is non-empty
// POST: returns absences or empty slice
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]domain.Absence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, start_date, end_date, reason, created_at FROM absence WHERE user_id = ? ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAbsences(rows)
}

// ListCovering returns absences whose range covers the given civil date.
// Dates are stored as YYYY-MM-DD text, so lexical comparison is date order.
// PRE: date is non-zero
// POST: returns absences or empty slice
func (s *SQLiteStore) ListCovering(ctx context.Context, date time.Time) ([]domain.Absence, error) {
	d := date.Format(dateFormat)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, start_date, end_date, reason, created_at
		 FROM absence WHERE start_date <= ? AND end_date >= ? ORDER BY start_date DESC`, d, d)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAbsences(rows)
}

// Delete removes an absence.
// PRE: id is non-empty
// POST: absence is deleted, or a not-found error
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM absence WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "absence not found")
	}
	return nil
}

func scanAbsence(scan func(dest ...any) error) (domain.Absence, error) {
	var a domain.Absence
	var startDate, endDate, createdAt string
	err := scan(&a.ID, &a.UserID, &startDate, &endDate, &a.Reason, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Absence{}, apperr.New(apperr.KindNotFound, "absence not found")
	}
	if err != nil {
		return domain.Absence{}, err
	}
	a.StartDate, _ = time.Parse(dateFormat, startDate)
	a.EndDate, _ = time.Parse(dateFormat, endDate)
	a.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return a, nil
}

func scanAbsences(rows *sql.Rows) ([]domain.Absence, error) {
	var result []domain.Absence
	for rows.Next() {
		a, err := scanAbsence(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
