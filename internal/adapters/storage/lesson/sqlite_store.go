package lesson

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sqnportal/internal/adapters/storage"
	"sqnportal/internal/apperr"
	domain "sqnportal/internal/domain/lesson"
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

// --- Lesson CRUD ---

// Save inserts or updates a lesson.
// PRE: l is a valid Lesson
// POST: lesson is persisted
func (s *SQLiteStore) Save(ctx context.Context, l domain.Lesson) error {
	var createdBy any
	if l.CreatedBy != "" {
		createdBy = l.CreatedBy
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lesson (id, title, description, lesson_date, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description,
		   lesson_date=excluded.lesson_date, created_by=excluded.created_by,
		   created_at=excluded.created_at`,
		l.ID, l.Title, l.Description, l.LessonDate.Format(dateFormat),
		createdBy, l.CreatedAt.Format(timeFormat))
	return err
}

// GetByID retrieves a lesson by ID.
// PRE: id is non-empty
// POST: returns the lesson or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, lesson_date, created_by, created_at FROM lesson WHERE id = ?`, id)
	return scanLesson(row.Scan)
}

// List returns all lessons ordered by lesson date ascending.
// PRE: none
// POST: returns lessons or empty slice
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, lesson_date, created_by, created_at FROM lesson ORDER BY lesson_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLessons(rows)
}

// ListByAssignee returns lessons the user is assigned to, ordered by date.
// PRE: userID is non-empty
// POST: returns lessons or empty slice
func (s *SQLiteStore) ListByAssignee(ctx context.Context, userID string) ([]domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, l.title, l.description, l.lesson_date, l.created_by, l.created_at
		 FROM lesson l
		 JOIN lesson_assignment a ON a.lesson_id = l.id
		 WHERE a.user_id = ?
		 ORDER BY l.lesson_date`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLessons(rows)
}

// Delete removes a lesson (assignments and resources cascade).
// PRE: id is non-empty
// POST: lesson and children are deleted, or a not-found error
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lesson WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "lesson not found")
	}
	return nil
}

// --- Assignments ---

// SaveAssignment links a user to a lesson.
// PRE: a is a valid Assignment
// POST: assignment is persisted; a duplicate pair is a conflict
func (s *SQLiteStore) SaveAssignment(ctx context.Context, a domain.Assignment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lesson_assignment (id, lesson_id, user_id) VALUES (?, ?, ?)`,
		a.ID, a.LessonID, a.UserID)
	if storage.IsUniqueViolation(err) {
		return apperr.New(apperr.KindConflict, "user is already assigned to this lesson")
	}
	return err
}

// ListAssignments returns all assignments for a lesson.
// PRE: lessonID is non-empty
// POST: returns assignments or empty slice
func (s *SQLiteStore) ListAssignments(ctx context.Context, lessonID string) ([]domain.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lesson_id, user_id FROM lesson_assignment WHERE lesson_id = ?`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.ID, &a.LessonID, &a.UserID); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// DeleteAssignment unlinks a user from a lesson.
// PRE: lessonID and userID are non-empty
// POST: assignment is deleted, or a not-found error
func (s *SQLiteStore) DeleteAssignment(ctx context.Context, lessonID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM lesson_assignment WHERE lesson_id = ? AND user_id = ?`, lessonID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "assignment not found")
	}
	return nil
}

// --- Resources ---

// SaveResource records a file attached to a lesson.
// PRE: r is a valid Resource
// POST: resource record is persisted
func (s *SQLiteStore) SaveResource(ctx context.Context, r domain.Resource) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lesson_resource (id, lesson_id, file_name, file_path, uploaded_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   lesson_id=excluded.lesson_id, file_name=excluded.file_name,
		   file_path=excluded.file_path, uploaded_at=excluded.uploaded_at`,
		r.ID, r.LessonID, r.FileName, r.FilePath, r.UploadedAt.Format(timeFormat))
	return err
}

// ListResources returns all resources for a lesson.
// PRE: lessonID is non-empty
// POST: returns resources or empty slice
func (s *SQLiteStore) ListResources(ctx context.Context, lessonID string) ([]domain.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lesson_id, file_name, file_path, uploaded_at FROM lesson_resource WHERE lesson_id = ? ORDER BY uploaded_at`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.Resource
	for rows.Next() {
		r, err := scanResource(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetResource retrieves a resource record by ID.
// PRE: id is non-empty
// POST: returns the resource or a not-found error
func (s *SQLiteStore) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lesson_id, file_name, file_path, uploaded_at FROM lesson_resource WHERE id = ?`, id)
	return scanResource(row.Scan)
}

// DeleteResource removes a resource record.
// PRE: id is non-empty
// POST: resource is deleted, or a not-found error
func (s *SQLiteStore) DeleteResource(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lesson_resource WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "resource not found")
	}
	return nil
}

// --- scanning ---

func scanLesson(scan func(dest ...any) error) (domain.Lesson, error) {
	var l domain.Lesson
	var lessonDate, createdAt string
	var createdBy sql.NullString
	err := scan(&l.ID, &l.Title, &l.Description, &lessonDate, &createdBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lesson{}, apperr.New(apperr.KindNotFound, "lesson not found")
	}
	if err != nil {
		return domain.Lesson{}, err
	}
	l.CreatedBy = createdBy.String
	l.LessonDate, _ = time.Parse(dateFormat, lessonDate)
	l.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return l, nil
}

func scanLessons(rows *sql.Rows) ([]domain.Lesson, error) {
	var result []domain.Lesson
	for rows.Next() {
		l, err := scanLesson(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func scanResource(scan func(dest ...any) error) (domain.Resource, error) {
	var r domain.Resource
	var uploadedAt string
	err := scan(&r.ID, &r.LessonID, &r.FileName, &r.FilePath, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Resource{}, apperr.New(apperr.KindNotFound, "resource not found")
	}
	if err != nil {
		return domain.Resource{}, err
	}
	r.UploadedAt, _ = time.Parse(timeFormat, uploadedAt)
	return r, nil
}
