package web

import (
	"net/http"

	"sqnportal/internal/adapters/http/middleware"
	"sqnportal/internal/application/orchestrators"
	"sqnportal/internal/domain/duty"
)

// rotaJSON is the wire shape for one duty rota row. Names are resolved from
// the user directory so the calendar never has to join client-side.
type rotaJSON struct {
	ID               string `json:"id"`
	Date             string `json:"date"`
	OriginalSeniorID string `json:"originalSeniorId"`
	OriginalJuniorID string `json:"originalJuniorId"`
	ActualSeniorID   string `json:"actualSeniorId"`
	ActualJuniorID   string `json:"actualJuniorId"`
	SeniorName       string `json:"seniorName"`
	JuniorName       string `json:"juniorName"`
	SeniorStatus     string `json:"seniorStatus"`
	JuniorStatus     string `json:"juniorStatus"`
	Color            string `json:"color"`
}

func toRotaJSON(r duty.Rota, names map[string]string) rotaJSON {
	return rotaJSON{
		ID:               r.ID,
		Date:             r.DutyDate.Format(duty.DateFormat),
		OriginalSeniorID: r.OriginalSeniorID,
		OriginalJuniorID: r.OriginalJuniorID,
		ActualSeniorID:   r.ActualSeniorID,
		ActualJuniorID:   r.ActualJuniorID,
		SeniorName:       names[r.ActualSeniorID],
		JuniorName:       names[r.ActualJuniorID],
		SeniorStatus:     r.SeniorStatus,
		JuniorStatus:     r.JuniorStatus,
		Color:            r.Color(),
	}
}

// handleListDuties handles GET /api/duties: all rota rows, ascending by date.
func handleListDuties(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	duties, err := stores.DutyStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	names, err := userNames(r)
	if err != nil {
		internalError(w, err)
		return
	}

	out := make([]rotaJSON, 0, len(duties))
	for _, d := range duties {
		out = append(out, toRotaJSON(d, names))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMyDuties handles GET /api/duties/mine: the caller's rota rows,
// annotated with the role they hold that day.
func handleMyDuties(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	duties, err := stores.DutyStore.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		internalError(w, err)
		return
	}
	names, err := userNames(r)
	if err != nil {
		internalError(w, err)
		return
	}

	type myDutyJSON struct {
		rotaJSON
		Role string `json:"role"`
	}
	out := make([]myDutyJSON, 0, len(duties))
	for _, d := range duties {
		out = append(out, myDutyJSON{rotaJSON: toRotaJSON(d, names), Role: d.RoleOf(sess.UserID)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleConfirmDuty handles POST /api/duties/confirm. Admins may confirm any
// slot; everyone else only the slot they actually hold.
func handleConfirmDuty(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		Date   string `json:"date"`
		Role   string `json:"role"`
		Status string `json:"status"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	if sess.Role != "admin" {
		date, err := duty.NormalizeDate(input.Date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		existing, err := stores.DutyStore.GetByDate(r.Context(), date)
		if err != nil {
			appError(w, err)
			return
		}
		if existing.RoleOf(sess.UserID) != input.Role {
			http.Error(w, "you can only confirm your own duty slot", http.StatusForbidden)
			return
		}
	}

	updated, err := orchestrators.ExecuteConfirmDuty(r.Context(), orchestrators.ConfirmDutyInput{
		Date:   input.Date,
		Role:   input.Role,
		Status: input.Status,
	}, orchestrators.ConfirmDutyDeps{DutyStore: stores.DutyStore})
	if err != nil {
		appError(w, err)
		return
	}

	names, err := userNames(r)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRotaJSON(updated, names))
}

// handleDutyStats handles GET /api/duties/stats: attended duty counts per
// user, zero counts included.
func handleDutyStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	stats, err := orchestrators.ExecuteDutyStats(r.Context(), orchestrators.DutyStatsDeps{
		DutyStore: stores.DutyStore,
		UserStore: stores.UserStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleAdminDuties handles POST (upsert) and DELETE for /api/admin/duties
func handleAdminDuties(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		var input struct {
			Date     string `json:"date"`
			SeniorID string `json:"seniorId"`
			JuniorID string `json:"juniorId"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		rota, err := orchestrators.ExecuteUpsertDuty(r.Context(), currentActor(r), orchestrators.UpsertDutyInput{
			Date:     input.Date,
			SeniorID: input.SeniorID,
			JuniorID: input.JuniorID,
		}, orchestrators.UpsertDutyDeps{
			DutyStore:     stores.DutyStore,
			UserStore:     stores.UserStore,
			Audit:         stores.AuditStore,
			Notify:        emailSender,
			NotifyAddress: dutyNotifyAddress,
		})
		if err != nil {
			appError(w, err)
			return
		}

		names, err := userNames(r)
		if err != nil {
			internalError(w, err)
			return
		}

		// Flag assignees with a registered absence covering the duty date.
		// The assignment still stands; the admin decides what to do.
		var warnings []string
		if covering, err := stores.AbsenceStore.ListCovering(r.Context(), rota.DutyDate); err == nil {
			for _, a := range covering {
				if a.UserID == rota.ActualSeniorID || a.UserID == rota.ActualJuniorID {
					warnings = append(warnings, names[a.UserID]+" has a registered absence on this date")
				}
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"duty":     toRotaJSON(rota, names),
			"warnings": warnings,
		})

	case "DELETE":
		date := r.URL.Query().Get("date")
		if date == "" {
			http.Error(w, "missing date", http.StatusBadRequest)
			return
		}

		err := orchestrators.ExecuteDeleteDuty(r.Context(), currentActor(r), orchestrators.DeleteDutyInput{
			Date: date,
		}, orchestrators.UpsertDutyDeps{
			DutyStore: stores.DutyStore,
			UserStore: stores.UserStore,
			Audit:     stores.AuditStore,
		})
		if err != nil {
			appError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
