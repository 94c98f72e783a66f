package orchestrators

import (
	"context"
	"log/slog"

	"sqnportal/internal/adapters/pdf"
	"sqnportal/internal/domain/assessment"
	"sqnportal/internal/domain/audit"
	"sqnportal/internal/domain/cadet"
)

// CohortListingStore lists a cohort's assessments.
type CohortListingStore interface {
	GetCohort(ctx context.Context, id string) (assessment.Cohort, error)
	ListByCohort(ctx context.Context, cohortID string) ([]assessment.RadioAssessment, error)
}

// CadetLookupStore resolves cadet records for display.
type CadetLookupStore interface {
	ListByIDs(ctx context.Context, ids []string) (map[string]cadet.Cadet, error)
}

// ExportResultsInput carries input for the results-sheet export.
type ExportResultsInput struct {
	CohortID string
}

// ExportResultsDeps holds dependencies for ExportResults.
type ExportResultsDeps struct {
	AssessmentStore CohortListingStore
	CadetStore      CadetLookupStore
	Audit           AuditRecorder
}

// ExecuteExportResults renders the results-sheet PDF for a cohort: passers
// only, sorted by cadet name.
// PRE: caller is an admin (enforced by middleware)
// POST: returns PDF bytes; audit event recorded
func ExecuteExportResults(ctx context.Context, actor Actor, input ExportResultsInput, deps ExportResultsDeps) ([]byte, error) {
	cohort, rows, err := loadCohortRows(ctx, input.CohortID, deps.AssessmentStore, deps.CadetStore)
	if err != nil {
		return nil, err
	}

	out, err := pdf.RenderResultsSheet(cohort, rows)
	if err != nil {
		return nil, err
	}

	slog.Info("assessment_event", "event", "results_exported", "cohort_id", input.CohortID, "bytes", len(out))
	recordAudit(ctx, deps.Audit, audit.NewEvent(actor.ID, actor.FullName, actor.Role, audit.CategoryAssessment, audit.ActionExport).
		WithResource("cohort", input.CohortID).
		WithDescription("exported results sheet for "+cohort.Name))

	return out, nil
}

// PrintPage is one page of the print view, which includes every cadet
// regardless of pass state.
type PrintPage struct {
	Page int        `json:"page"`
	Rows []PrintRow `json:"rows"`
}

// PrintRow is one cadet's line on the print view.
type PrintRow struct {
	Cadet      cadet.Cadet                `json:"cadet"`
	Assessment assessment.RadioAssessment `json:"assessment"`
}

// ExecutePrintView builds the paginated print view for a cohort: all cadets,
// pass or not, ten per page, sorted by cadet name.
// POST: pages hold at most assessment.RowsPerPage rows each, order preserved
func ExecutePrintView(ctx context.Context, input ExportResultsInput, deps ExportResultsDeps) ([]PrintPage, error) {
	_, rows, err := loadCohortRows(ctx, input.CohortID, deps.AssessmentStore, deps.CadetStore)
	if err != nil {
		return nil, err
	}

	var pages []PrintPage
	for start := 0; start < len(rows); start += assessment.RowsPerPage {
		end := start + assessment.RowsPerPage
		if end > len(rows) {
			end = len(rows)
		}
		page := PrintPage{Page: len(pages)}
		for _, r := range rows[start:end] {
			page.Rows = append(page.Rows, PrintRow{Cadet: r.Cadet, Assessment: r.Assessment})
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// loadCohortRows fetches a cohort's assessments joined to their cadets,
// sorted by cadet full name.
func loadCohortRows(ctx context.Context, cohortID string, assessments CohortListingStore, cadets CadetLookupStore) (assessment.Cohort, []pdf.Row, error) {
	cohort, err := assessments.GetCohort(ctx, cohortID)
	if err != nil {
		return assessment.Cohort{}, nil, err
	}
	list, err := assessments.ListByCohort(ctx, cohortID)
	if err != nil {
		return assessment.Cohort{}, nil, err
	}

	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.CadetID)
	}
	byID, err := cadets.ListByIDs(ctx, ids)
	if err != nil {
		return assessment.Cohort{}, nil, err
	}

	assessment.SortByCadetName(list, func(a assessment.RadioAssessment) string {
		return byID[a.CadetID].FullName
	})

	rows := make([]pdf.Row, 0, len(list))
	for _, a := range list {
		rows = append(rows, pdf.Row{Cadet: byID[a.CadetID], Assessment: a})
	}
	return cohort, rows, nil
}
