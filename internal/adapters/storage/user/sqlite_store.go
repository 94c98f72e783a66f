package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sqnportal/internal/adapters/storage"
	"sqnportal/internal/apperr"
	domain "sqnportal/internal/domain/user"
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

// Save inserts or updates a user.
// PRE: u is a valid User
// POST: user is persisted; duplicate username reported as conflict
func (s *SQLiteStore) Save(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user (id, username, full_name, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   username=excluded.username, full_name=excluded.full_name,
		   password_hash=excluded.password_hash, role=excluded.role,
		   created_at=excluded.created_at`,
		u.ID, u.Username, u.FullName, u.PasswordHash, u.Role, u.CreatedAt.Format(timeFormat))
	if storage.IsUniqueViolation(err) {
		return apperr.New(apperr.KindConflict, "username already taken")
	}
	return err
}

// GetByID retrieves a user by ID.
// PRE: id is non-empty
// POST: returns the user or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, full_name, password_hash, role, created_at FROM user WHERE id = ?`, id)
	return scanUser(row.Scan)
}

// GetByUsername retrieves a user by username.
// PRE: username is non-empty
// POST: returns the user or a not-found error
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, full_name, password_hash, role, created_at FROM user WHERE username = ?`, username)
	return scanUser(row.Scan)
}

// List returns all users ordered by full name.
// PRE: none
// POST: returns users or empty slice
func (s *SQLiteStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, full_name, password_hash, role, created_at FROM user ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// DeleteCascade removes a user and every row that references them.
// PRE: id is non-empty
// POST: user and dependent rows are deleted atomically, or nothing is
func (s *SQLiteStore) DeleteCascade(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lesson_assignment WHERE user_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM duty_rota WHERE original_senior_id = ? OR original_junior_id = ? OR actual_senior_id = ? OR actual_junior_id = ?`,
		id, id, id, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM absence WHERE user_id = ?`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM user WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return tx.Commit()
}

// scanUser scans a row into a User using the given scan function.
func scanUser(scan func(dest ...any) error) (domain.User, error) {
	var u domain.User
	var createdAt string
	err := scan(&u.ID, &u.Username, &u.FullName, &u.PasswordHash, &u.Role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		return domain.User{}, err
	}
	u.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return u, nil
}
