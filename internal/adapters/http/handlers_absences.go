package web

import (
	"net/http"
	"time"

	"sqnportal/internal/adapters/http/middleware"
	absenceDomain "sqnportal/internal/domain/absence"
	auditDomain "sqnportal/internal/domain/audit"
	"sqnportal/internal/domain/duty"
)

// absenceJSON is the wire shape for an absence, annotated with the owner's
// full name.
type absenceJSON struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAbsenceJSON(a absenceDomain.Absence, names map[string]string) absenceJSON {
	return absenceJSON{
		ID:        a.ID,
		UserID:    a.UserID,
		UserName:  names[a.UserID],
		StartDate: a.StartDate.Format(duty.DateFormat),
		EndDate:   a.EndDate.Format(duty.DateFormat),
		Reason:    a.Reason,
		CreatedAt: a.CreatedAt,
	}
}

// handleAbsences handles GET (list) and POST (create own) for /api/absences
func handleAbsences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		absences, err := stores.AbsenceStore.List(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		names, err := userNames(r)
		if err != nil {
			internalError(w, err)
			return
		}

		out := make([]absenceJSON, 0, len(absences))
		for _, a := range absences {
			out = append(out, toAbsenceJSON(a, names))
		}
		writeJSON(w, http.StatusOK, out)

	case "POST":
		var input struct {
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
			Reason    string `json:"reason"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		start, err := duty.NormalizeDate(input.StartDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		end, err := duty.NormalizeDate(input.EndDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sess, _ := middleware.GetSessionFromContext(r.Context())
		a := absenceDomain.Absence{
			ID:        generateID(),
			UserID:    sess.UserID,
			StartDate: start,
			EndDate:   end,
			Reason:    input.Reason,
			CreatedAt: timeNow(),
		}
		if err := a.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.AbsenceStore.Save(r.Context(), a); err != nil {
			appError(w, err)
			return
		}

		recordAudit(r, auditDomain.CategoryAbsence, auditDomain.ActionCreate, "absence", a.ID,
			a.StartDate.Format(duty.DateFormat)+" to "+a.EndDate.Format(duty.DateFormat))
		names := map[string]string{sess.UserID: sess.FullName}
		writeJSON(w, http.StatusCreated, toAbsenceJSON(a, names))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleMyAbsences handles GET /api/absences/mine: the caller's own
// absences, newest first.
func handleMyAbsences(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	absences, err := stores.AbsenceStore.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		internalError(w, err)
		return
	}

	names := map[string]string{sess.UserID: sess.FullName}
	out := make([]absenceJSON, 0, len(absences))
	for _, a := range absences {
		out = append(out, toAbsenceJSON(a, names))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAbsence handles PUT (update) and DELETE for /api/absence. Only the
// owner or an admin may touch an absence.
func handleAbsence(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	isAdmin := middleware.IsAdmin(r.Context())

	switch r.Method {
	case "PUT":
		var input struct {
			ID        string `json:"id"`
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
			Reason    string `json:"reason"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		a, err := stores.AbsenceStore.GetByID(r.Context(), input.ID)
		if err != nil {
			appError(w, err)
			return
		}
		if !a.CanModify(sess.UserID, isAdmin) {
			http.Error(w, "you may only modify your own absences", http.StatusForbidden)
			return
		}

		start, err := duty.NormalizeDate(input.StartDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		end, err := duty.NormalizeDate(input.EndDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a.StartDate = start
		a.EndDate = end
		a.Reason = input.Reason
		if err := a.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.AbsenceStore.Save(r.Context(), a); err != nil {
			appError(w, err)
			return
		}

		recordAudit(r, auditDomain.CategoryAbsence, auditDomain.ActionUpdate, "absence", a.ID,
			a.StartDate.Format(duty.DateFormat)+" to "+a.EndDate.Format(duty.DateFormat))
		names, err := userNames(r)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAbsenceJSON(a, names))

	case "DELETE":
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		a, err := stores.AbsenceStore.GetByID(r.Context(), id)
		if err != nil {
			appError(w, err)
			return
		}
		if !a.CanModify(sess.UserID, isAdmin) {
			http.Error(w, "you may only modify your own absences", http.StatusForbidden)
			return
		}
		if err := stores.AbsenceStore.Delete(r.Context(), id); err != nil {
			appError(w, err)
			return
		}

		recordAudit(r, auditDomain.CategoryAbsence, auditDomain.ActionDelete, "absence", id, "absence deleted")
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
