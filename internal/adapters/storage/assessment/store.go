package assessment

import (
	"context"

	"sqnportal/internal/adapters/storage"
	domainassessment "sqnportal/internal/domain/assessment"
	domaincadet "sqnportal/internal/domain/cadet"
)

// Store persists assessment cohorts and radio assessments.
type Store interface {
	// Cohorts
	SaveCohort(ctx context.Context, c domainassessment.Cohort) error
	GetCohort(ctx context.Context, id string) (domainassessment.Cohort, error)
	ListCohorts(ctx context.Context) ([]domainassessment.Cohort, error)
	DeleteCohort(ctx context.Context, id string) error

	// Assessments
	Save(ctx context.Context, a domainassessment.RadioAssessment) error
	GetByID(ctx context.Context, id string) (domainassessment.RadioAssessment, error)
	ListByCohort(ctx context.Context, cohortID string) ([]domainassessment.RadioAssessment, error)
	Delete(ctx context.Context, id string) error

	// CreateWithCadet persists a new cadet record and their zero-state
	// assessment in one transaction.
	// PRE: c and a are valid, a.CadetID == c.ID
	// POST: both rows exist, or neither; duplicate cohort membership is a conflict
	CreateWithCadet(ctx context.Context, c domaincadet.Cadet, a domainassessment.RadioAssessment) error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
