package duty

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sqnportal/internal/adapters/storage"
	"sqnportal/internal/apperr"
	domain "sqnportal/internal/domain/duty"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a rota row by ID.
// PRE: r is a valid Rota
// POST: row is persisted; a second row for the same date is a conflict
func (s *SQLiteStore) Save(ctx context.Context, r domain.Rota) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO duty_rota (id, duty_date, original_senior_id, original_junior_id, actual_senior_id, actual_junior_id, senior_status, junior_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   duty_date=excluded.duty_date,
		   original_senior_id=excluded.original_senior_id, original_junior_id=excluded.original_junior_id,
		   actual_senior_id=excluded.actual_senior_id, actual_junior_id=excluded.actual_junior_id,
		   senior_status=excluded.senior_status, junior_status=excluded.junior_status`,
		r.ID, r.DutyDate.Format(domain.DateFormat),
		r.OriginalSeniorID, r.OriginalJuniorID, r.ActualSeniorID, r.ActualJuniorID,
		r.SeniorStatus, r.JuniorStatus)
	if storage.IsUniqueViolation(err) {
		return apperr.New(apperr.KindConflict, "a duty is already rostered for that date")
	}
	return err
}

// GetByDate retrieves the rota row for a civil date.
// PRE: date is non-zero
// POST: returns the row or a not-found error
func (s *SQLiteStore) GetByDate(ctx context.Context, date time.Time) (domain.Rota, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, duty_date, original_senior_id, original_junior_id, actual_senior_id, actual_junior_id, senior_status, junior_status
		 FROM duty_rota WHERE duty_date = ?`, date.Format(domain.DateFormat))
	return scanRota(row.Scan)
}

// DeleteByDate removes the rota row for a civil date.
// PRE: date is non-zero
// POST: row is deleted, or a not-found error if no row exists
func (s *SQLiteStore) DeleteByDate(ctx context.Context, date time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM duty_rota WHERE duty_date = ?`, date.Format(domain.DateFormat))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "no duty rostered for that date")
	}
	return nil
}

// List returns all rota rows ordered by date ascending.
// PRE: none
// POST: returns rows or empty slice
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Rota, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, duty_date, original_senior_id, original_junior_id, actual_senior_id, actual_junior_id, senior_status, junior_status
		 FROM duty_rota ORDER BY duty_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRotas(rows)
}

// ListByUser returns rota rows where the user appears in any slot.
// PRE: userID is non-empty
// POST: returns rows or empty slice
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]domain.Rota, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, duty_date, original_senior_id, original_junior_id, actual_senior_id, actual_junior_id, senior_status, junior_status
		 FROM duty_rota
		 WHERE original_senior_id = ? OR original_junior_id = ? OR actual_senior_id = ? OR actual_junior_id = ?
		 ORDER BY duty_date`, userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRotas(rows)
}

// CountAttendedSenior returns attended senior-slot duty counts per user.
// PRE: none
// POST: returns a map of user ID to count; users with none are absent
func (s *SQLiteStore) CountAttendedSenior(ctx context.Context) (map[string]int, error) {
	return s.countAttended(ctx,
		`SELECT actual_senior_id, COUNT(*) FROM duty_rota WHERE senior_status = ? GROUP BY actual_senior_id`)
}

// CountAttendedJunior returns attended junior-slot duty counts per user.
// PRE: none
// POST: returns a map of user ID to count; users with none are absent
func (s *SQLiteStore) CountAttendedJunior(ctx context.Context) (map[string]int, error) {
	return s.countAttended(ctx,
		`SELECT actual_junior_id, COUNT(*) FROM duty_rota WHERE junior_status = ? GROUP BY actual_junior_id`)
}

func (s *SQLiteStore) countAttended(ctx context.Context, query string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, domain.StatusAttended)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// scanRota scans a row into a Rota using the given scan function.
func scanRota(scan func(dest ...any) error) (domain.Rota, error) {
	var r domain.Rota
	var dutyDate string
	err := scan(&r.ID, &dutyDate, &r.OriginalSeniorID, &r.OriginalJuniorID,
		&r.ActualSeniorID, &r.ActualJuniorID, &r.SeniorStatus, &r.JuniorStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Rota{}, apperr.New(apperr.KindNotFound, "no duty rostered for that date")
	}
	if err != nil {
		return domain.Rota{}, err
	}
	r.DutyDate, _ = time.Parse(domain.DateFormat, dutyDate)
	return r, nil
}

func scanRotas(rows *sql.Rows) ([]domain.Rota, error) {
	var result []domain.Rota
	for rows.Next() {
		r, err := scanRota(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
