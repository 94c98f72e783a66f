package web

import (
	"net/http"
	"strconv"
	"time"

	"sqnportal/internal/application/orchestrators"
	assessmentDomain "sqnportal/internal/domain/assessment"
	auditDomain "sqnportal/internal/domain/audit"
	cadetDomain "sqnportal/internal/domain/cadet"
)

// cohortJSON is the wire shape for an assessment cohort.
type cohortJSON struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	InstructorName  string    `json:"instructorName"`
	InstructorSqn   string    `json:"instructorSqn"`
	AssessorName    string    `json:"assessorName"`
	AssessorSqn     string    `json:"assessorSqn"`
	CreatedAt       time.Time `json:"createdAt"`
	AssessmentCount int       `json:"assessmentCount"`
}

func toCohortJSON(c assessmentDomain.Cohort, count int) cohortJSON {
	return cohortJSON{
		ID:              c.ID,
		Name:            c.Name,
		Type:            c.Type,
		InstructorName:  c.InstructorName,
		InstructorSqn:   c.InstructorSqn,
		AssessorName:    c.AssessorName,
		AssessorSqn:     c.AssessorSqn,
		CreatedAt:       c.CreatedAt,
		AssessmentCount: count,
	}
}

// cadetJSON is the wire shape for a cadet record.
type cadetJSON struct {
	ID       string `json:"id"`
	Serial   string `json:"serial"`
	Sqn      string `json:"sqn"`
	Rank     string `json:"rank"`
	FullName string `json:"fullName"`
}

func toCadetJSON(c cadetDomain.Cadet) cadetJSON {
	return cadetJSON{ID: c.ID, Serial: c.Serial, Sqn: c.Sqn, Rank: c.Rank, FullName: c.FullName}
}

// assessmentJSON is the wire shape for one cadet's assessment within a
// cohort. PassFail is derived server-side and never accepted from a client.
type assessmentJSON struct {
	ID       string            `json:"id"`
	CohortID string            `json:"cohortId"`
	Cadet    cadetJSON         `json:"cadet"`
	Criteria map[string]string `json:"criteria"`
	PassFail bool              `json:"passFail"`
}

// handleListCohorts handles GET /api/cohorts: newest first, with assessment
// counts.
func handleListCohorts(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cohorts, err := stores.AssessmentStore.ListCohorts(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	out := make([]cohortJSON, 0, len(cohorts))
	for _, c := range cohorts {
		assessments, err := stores.AssessmentStore.ListByCohort(r.Context(), c.ID)
		if err != nil {
			internalError(w, err)
			return
		}
		out = append(out, toCohortJSON(c, len(assessments)))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCohortAssessments handles GET /api/cohort/assessments?cohort_id=:
// the cohort's assessments ordered by cadet full name.
func handleCohortAssessments(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cohortID := r.URL.Query().Get("cohort_id")
	if cohortID == "" {
		http.Error(w, "missing cohort_id", http.StatusBadRequest)
		return
	}

	cohort, err := stores.AssessmentStore.GetCohort(r.Context(), cohortID)
	if err != nil {
		appError(w, err)
		return
	}
	assessments, err := stores.AssessmentStore.ListByCohort(r.Context(), cohortID)
	if err != nil {
		internalError(w, err)
		return
	}

	ids := make([]string, 0, len(assessments))
	for _, a := range assessments {
		ids = append(ids, a.CadetID)
	}
	cadets, err := stores.CadetStore.ListByIDs(r.Context(), ids)
	if err != nil {
		internalError(w, err)
		return
	}

	assessmentDomain.SortByCadetName(assessments, func(a assessmentDomain.RadioAssessment) string {
		return cadets[a.CadetID].FullName
	})

	rows := make([]assessmentJSON, 0, len(assessments))
	for _, a := range assessments {
		rows = append(rows, assessmentJSON{
			ID:       a.ID,
			CohortID: a.CohortID,
			Cadet:    toCadetJSON(cadets[a.CadetID]),
			Criteria: a.Criteria,
			PassFail: a.PassFail,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cohort":      toCohortJSON(cohort, len(assessments)),
		"assessments": rows,
	})
}

// handlePrintView handles GET /api/cohort/print?cohort_id=: the paginated
// print view, all cadets, ten per page.
func handlePrintView(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cohortID := r.URL.Query().Get("cohort_id")
	if cohortID == "" {
		http.Error(w, "missing cohort_id", http.StatusBadRequest)
		return
	}

	pages, err := orchestrators.ExecutePrintView(r.Context(), orchestrators.ExportResultsInput{
		CohortID: cohortID,
	}, orchestrators.ExportResultsDeps{
		AssessmentStore: stores.AssessmentStore,
		CadetStore:      stores.CadetStore,
	})
	if err != nil {
		appError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// handleListCadets handles GET /api/cadets: all cadets ordered by full name.
func handleListCadets(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cadets, err := stores.CadetStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]cadetJSON, 0, len(cadets))
	for _, c := range cadets {
		out = append(out, toCadetJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAdminCohorts handles POST (create) and DELETE for /api/admin/cohorts
func handleAdminCohorts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		var input struct {
			Name           string `json:"name"`
			Type           string `json:"type"`
			InstructorName string `json:"instructorName"`
			InstructorSqn  string `json:"instructorSqn"`
			AssessorName   string `json:"assessorName"`
			AssessorSqn    string `json:"assessorSqn"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		c := assessmentDomain.Cohort{
			ID:             generateID(),
			Name:           input.Name,
			Type:           input.Type,
			InstructorName: input.InstructorName,
			InstructorSqn:  input.InstructorSqn,
			AssessorName:   input.AssessorName,
			AssessorSqn:    input.AssessorSqn,
			CreatedAt:      timeNow(),
		}
		if err := c.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.AssessmentStore.SaveCohort(r.Context(), c); err != nil {
			appError(w, err)
			return
		}

		recordAudit(r, auditDomain.CategoryAssessment, auditDomain.ActionCreate, "cohort", c.ID, c.Name)
		writeJSON(w, http.StatusCreated, toCohortJSON(c, 0))

	case "DELETE":
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		if err := stores.AssessmentStore.DeleteCohort(r.Context(), id); err != nil {
			appError(w, err)
			return
		}
		recordAudit(r, auditDomain.CategoryAssessment, auditDomain.ActionDelete, "cohort", id, "cohort deleted")
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminAddCadet handles POST /api/admin/cohorts/cadets: registers a
// cadet and their zero-state assessment in one transaction.
func handleAdminAddCadet(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		CohortID string `json:"cohortId"`
		Serial   string `json:"serial"`
		Sqn      string `json:"sqn"`
		Rank     string `json:"rank"`
		FullName string `json:"fullName"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteAddCadet(r.Context(), currentActor(r), orchestrators.AddCadetInput{
		CohortID: input.CohortID,
		Serial:   input.Serial,
		Sqn:      input.Sqn,
		Rank:     input.Rank,
		FullName: input.FullName,
	}, orchestrators.AddCadetDeps{AssessmentStore: stores.AssessmentStore, Audit: stores.AuditStore})
	if err != nil {
		appError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, assessmentJSON{
		ID:       result.Assessment.ID,
		CohortID: result.Assessment.CohortID,
		Cadet:    toCadetJSON(result.Cadet),
		Criteria: result.Assessment.Criteria,
		PassFail: result.Assessment.PassFail,
	})
}

// handleAdminSetCriterion handles POST /api/admin/assessments/criterion
func handleAdminSetCriterion(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		AssessmentID string `json:"assessmentId"`
		Criterion    string `json:"criterion"`
		Status       string `json:"status"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	a, err := orchestrators.ExecuteSetCriterion(r.Context(), currentActor(r), orchestrators.SetCriterionInput{
		AssessmentID: input.AssessmentID,
		Criterion:    input.Criterion,
		Status:       input.Status,
	}, orchestrators.SetCriterionDeps{AssessmentStore: stores.AssessmentStore, Audit: stores.AuditStore})
	if err != nil {
		appError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       a.ID,
		"criteria": a.Criteria,
		"passFail": a.PassFail,
	})
}

// handleAdminRemoveAssessment handles DELETE /api/admin/assessments/remove?id=
// The cadet record itself is kept; only the cohort membership goes.
func handleAdminRemoveAssessment(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	if err := stores.AssessmentStore.Delete(r.Context(), id); err != nil {
		appError(w, err)
		return
	}
	recordAudit(r, auditDomain.CategoryAssessment, auditDomain.ActionDelete, "assessment", id, "removed from cohort")
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminExportResults handles GET /api/admin/cohorts/export?cohort_id=:
// the results-sheet PDF, passers only.
func handleAdminExportResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cohortID := r.URL.Query().Get("cohort_id")
	if cohortID == "" {
		http.Error(w, "missing cohort_id", http.StatusBadRequest)
		return
	}

	out, err := orchestrators.ExecuteExportResults(r.Context(), currentActor(r), orchestrators.ExportResultsInput{
		CohortID: cohortID,
	}, orchestrators.ExportResultsDeps{
		AssessmentStore: stores.AssessmentStore,
		CadetStore:      stores.CadetStore,
		Audit:           stores.AuditStore,
	})
	if err != nil {
		appError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="results-sheet.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Write(out)
}
