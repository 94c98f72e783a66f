package orchestrators

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"sqnportal/internal/apperr"
	"sqnportal/internal/domain/assessment"
	"sqnportal/internal/domain/audit"
	"sqnportal/internal/domain/cadet"
)

// AssessmentStore defines the store interface needed by the assessment
// orchestrators.
type AssessmentStore interface {
	GetCohort(ctx context.Context, id string) (assessment.Cohort, error)
	GetByID(ctx context.Context, id string) (assessment.RadioAssessment, error)
	Save(ctx context.Context, a assessment.RadioAssessment) error
	CreateWithCadet(ctx context.Context, c cadet.Cadet, a assessment.RadioAssessment) error
}

// AddCadetInput carries input for adding a cadet to a cohort.
type AddCadetInput struct {
	CohortID string
	Serial   string
	Sqn      string
	Rank     string
	FullName string
}

// AddCadetDeps holds dependencies for AddCadet.
type AddCadetDeps struct {
	AssessmentStore AssessmentStore
	Audit           AuditRecorder
}

// AddCadetResult carries the created records.
type AddCadetResult struct {
	Cadet      cadet.Cadet
	Assessment assessment.RadioAssessment
}

// ExecuteAddCadet registers a cadet and their zero-state assessment in one
// transaction, so a cohort never shows a cadet without criteria rows.
// PRE: caller is an admin (enforced by middleware)
// POST: cadet and assessment both exist, or neither
func ExecuteAddCadet(ctx context.Context, actor Actor, input AddCadetInput, deps AddCadetDeps) (AddCadetResult, error) {
	if _, err := deps.AssessmentStore.GetCohort(ctx, input.CohortID); err != nil {
		return AddCadetResult{}, err
	}

	c := cadet.Cadet{
		ID:       uuid.New().String(),
		Serial:   input.Serial,
		Sqn:      input.Sqn,
		Rank:     input.Rank,
		FullName: input.FullName,
	}
	if err := c.Validate(); err != nil {
		return AddCadetResult{}, apperr.Validation(err)
	}

	a := assessment.New(input.CohortID, c.ID)
	a.ID = uuid.New().String()

	if err := deps.AssessmentStore.CreateWithCadet(ctx, c, a); err != nil {
		return AddCadetResult{}, err
	}

	slog.Info("assessment_event", "event", "cadet_added", "cohort_id", input.CohortID,
		"cadet_id", c.ID, "name", c.FullName)
	recordAudit(ctx, deps.Audit, audit.NewEvent(actor.ID, actor.FullName, actor.Role, audit.CategoryAssessment, audit.ActionCreate).
		WithResource("cadet", c.ID).
		WithDescription("added cadet "+c.FullName+" to cohort"))

	return AddCadetResult{Cadet: c, Assessment: a}, nil
}
