package assessment

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"sqnportal/internal/adapters/storage"
	"sqnportal/internal/apperr"
	domain "sqnportal/internal/domain/assessment"
	domaincadet "sqnportal/internal/domain/cadet"
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

// criterionColumns maps each criterion key to its column, in sheet order.
// INVARIANT: same length and order as domain.CriterionKeys.
var criterionColumns = []string{
	"first_class_logbook_completed",
	"basic_cyber_security_video_watched",
	"correct_use_of_both_full_callsigns",
	"authenticate_requested",
	"authenticate_answered_correctly",
	"radio_check_requested",
	"radio_check_answered_correctly",
	"tactical_message_fully_answered",
	"i_say_again_used_correctly",
	"say_again_used",
	"proword_knowledge_completed_ok",
	"security_knowledge_completed_ok",
	"general_operating_and_confidence",
}

// --- Cohorts ---

// SaveCohort inserts or updates a cohort.
// PRE: c is a valid Cohort
// POST: cohort is persisted
func (s *SQLiteStore) SaveCohort(ctx context.Context, c domain.Cohort) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessment_cohort (id, name, type, instructor_name, instructor_sqn, assessor_name, assessor_sqn, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, type=excluded.type,
		   instructor_name=excluded.instructor_name, instructor_sqn=excluded.instructor_sqn,
		   assessor_name=excluded.assessor_name, assessor_sqn=excluded.assessor_sqn,
		   created_at=excluded.created_at`,
		c.ID, c.Name, c.Type, c.InstructorName, c.InstructorSqn,
		c.AssessorName, c.AssessorSqn, c.CreatedAt.Format(timeFormat))
	return err
}

// GetCohort retrieves a cohort by ID.
// PRE: id is non-empty
// POST: returns the cohort or a not-found error
func (s *SQLiteStore) GetCohort(ctx context.Context, id string) (domain.Cohort, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, instructor_name, instructor_sqn, assessor_name, assessor_sqn, created_at
		 FROM assessment_cohort WHERE id = ?`, id)
	return scanCohort(row.Scan)
}

// ListCohorts returns all cohorts ordered by creation descending.
// PRE: none
// POST: returns cohorts or empty slice
func (s *SQLiteStore) ListCohorts(ctx context.Context) ([]domain.Cohort, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, instructor_name, instructor_sqn, assessor_name, assessor_sqn, created_at
		 FROM assessment_cohort ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.Cohort
	for rows.Next() {
		c, err := scanCohort(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// DeleteCohort removes a cohort (its assessments cascade).
// PRE: id is non-empty
// POST: cohort and assessments deleted, or a not-found error
func (s *SQLiteStore) DeleteCohort(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessment_cohort WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "cohort not found")
	}
	return nil
}

// --- Assessments ---

// assessmentColumns is the full column list used by every assessment query.
var assessmentColumns = "id, cohort_id, cadet_id, " + strings.Join(criterionColumns, ", ") + ", pass_fail"

// Save inserts or updates an assessment.
// PRE: a is a valid RadioAssessment
// POST: assessment is persisted; duplicate cohort membership is a conflict
func (s *SQLiteStore) Save(ctx context.Context, a domain.RadioAssessment) error {
	return execSave(ctx, s.db, a)
}

// GetByID retrieves an assessment by ID.
// PRE: id is non-empty
// POST: returns the assessment or a not-found error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.RadioAssessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM radio_assessment WHERE id = ?`, id)
	return scanAssessment(row.Scan)
}

// ListByCohort returns all assessments in a cohort.
// PRE: cohortID is non-empty
// POST: returns assessments or empty slice
func (s *SQLiteStore) ListByCohort(ctx context.Context, cohortID string) ([]domain.RadioAssessment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assessmentColumns+` FROM radio_assessment WHERE cohort_id = ?`, cohortID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []domain.RadioAssessment
	for rows.Next() {
		a, err := scanAssessment(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Delete removes an assessment.
// PRE: id is non-empty
// POST: assessment is deleted, or a not-found error
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM radio_assessment WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "assessment not found")
	}
	return nil
}

// CreateWithCadet persists a new cadet record and their zero-state assessment
// in one transaction.
// PRE: c and a are valid, a.CadetID == c.ID
// POST: both rows exist, or neither; duplicate cohort membership is a conflict
func (s *SQLiteStore) CreateWithCadet(ctx context.Context, c domaincadet.Cadet, a domain.RadioAssessment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var serial any
	if c.Serial != "" {
		serial = c.Serial
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cadet (id, serial, sqn, rank, full_name) VALUES (?, ?, ?, ?, ?)`,
		c.ID, serial, c.Sqn, c.Rank, c.FullName); err != nil {
		return err
	}
	if err := execSave(ctx, tx, a); err != nil {
		return err
	}
	return tx.Commit()
}

// execer covers both SQLDB and *sql.Tx for shared write statements.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execSave(ctx context.Context, db execer, a domain.RadioAssessment) error {
	cols := strings.Join(criterionColumns, ", ")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(criterionColumns)), ", ")
	var sets []string
	for _, col := range criterionColumns {
		sets = append(sets, col+"=excluded."+col)
	}

	args := []any{a.ID, a.CohortID, a.CadetID}
	for _, key := range domain.CriterionKeys {
		args = append(args, a.Criteria[key])
	}
	args = append(args, boolToInt(a.PassFail))

	_, err := db.ExecContext(ctx,
		`INSERT INTO radio_assessment (id, cohort_id, cadet_id, `+cols+`, pass_fail)
		 VALUES (?, ?, ?, `+marks+`, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   cohort_id=excluded.cohort_id, cadet_id=excluded.cadet_id,
		   `+strings.Join(sets, ", ")+`, pass_fail=excluded.pass_fail`,
		args...)
	if storage.IsUniqueViolation(err) {
		return apperr.New(apperr.KindConflict, "cadet is already in this cohort")
	}
	return err
}

// --- scanning ---

func scanCohort(scan func(dest ...any) error) (domain.Cohort, error) {
	var c domain.Cohort
	var createdAt string
	err := scan(&c.ID, &c.Name, &c.Type, &c.InstructorName, &c.InstructorSqn,
		&c.AssessorName, &c.AssessorSqn, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cohort{}, apperr.New(apperr.KindNotFound, "cohort not found")
	}
	if err != nil {
		return domain.Cohort{}, err
	}
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return c, nil
}

func scanAssessment(scan func(dest ...any) error) (domain.RadioAssessment, error) {
	var a domain.RadioAssessment
	statuses := make([]string, len(criterionColumns))
	var passFail int

	dest := []any{&a.ID, &a.CohortID, &a.CadetID}
	for i := range statuses {
		dest = append(dest, &statuses[i])
	}
	dest = append(dest, &passFail)

	err := scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RadioAssessment{}, apperr.New(apperr.KindNotFound, "assessment not found")
	}
	if err != nil {
		return domain.RadioAssessment{}, err
	}

	a.Criteria = make(map[string]string, len(domain.CriterionKeys))
	for i, key := range domain.CriterionKeys {
		a.Criteria[key] = statuses[i]
	}
	a.PassFail = passFail == 1
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
