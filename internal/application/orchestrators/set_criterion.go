package orchestrators

import (
	"context"
	"log/slog"

	"sqnportal/internal/apperr"
	"sqnportal/internal/domain/assessment"
	"sqnportal/internal/domain/audit"
)

// SetCriterionInput carries input for marking one assessment criterion.
type SetCriterionInput struct {
	AssessmentID string
	Criterion    string
	Status       string
}

// SetCriterionDeps holds dependencies for SetCriterion.
type SetCriterionDeps struct {
	AssessmentStore AssessmentStore
	Audit           AuditRecorder
}

// ExecuteSetCriterion marks one criterion and persists the assessment in a
// single write; the pass/fail aggregate is recomputed in memory first, so a
// reader never observes a stale aggregate.
// PRE: caller is an admin (enforced by middleware)
// POST: criterion and aggregate updated together, or error and no change
func ExecuteSetCriterion(ctx context.Context, actor Actor, input SetCriterionInput, deps SetCriterionDeps) (assessment.RadioAssessment, error) {
	a, err := deps.AssessmentStore.GetByID(ctx, input.AssessmentID)
	if err != nil {
		return assessment.RadioAssessment{}, err
	}

	if err := a.SetCriterion(input.Criterion, input.Status); err != nil {
		return assessment.RadioAssessment{}, apperr.Validation(err)
	}

	if err := deps.AssessmentStore.Save(ctx, a); err != nil {
		return assessment.RadioAssessment{}, err
	}

	slog.Info("assessment_event", "event", "criterion_set", "assessment_id", a.ID,
		"criterion", input.Criterion, "status", input.Status, "pass_fail", a.PassFail)
	recordAudit(ctx, deps.Audit, audit.NewEvent(actor.ID, actor.FullName, actor.Role, audit.CategoryAssessment, audit.ActionUpdate).
		WithResource("assessment", a.ID).
		WithDescription("set "+input.Criterion+" to "+input.Status))

	return a, nil
}
