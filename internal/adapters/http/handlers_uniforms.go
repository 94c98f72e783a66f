package web

import (
	"net/http"
	"time"

	"sqnportal/internal/adapters/http/middleware"
	auditDomain "sqnportal/internal/domain/audit"
	uniformDomain "sqnportal/internal/domain/uniform"
)

// uniformJSON is the wire shape for a uniform-store item, annotated with the
// adder's full name.
type uniformJSON struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Size        string    `json:"size"`
	Condition   string    `json:"condition"`
	AddedByID   string    `json:"addedById"`
	AddedByName string    `json:"addedByName"`
	AddedAt     time.Time `json:"addedAt"`
}

func toUniformJSON(i uniformDomain.Item, names map[string]string) uniformJSON {
	return uniformJSON{
		ID:          i.ID,
		Type:        i.Type,
		Size:        i.Size,
		Condition:   i.Condition,
		AddedByID:   i.AddedByID,
		AddedByName: names[i.AddedByID],
		AddedAt:     i.AddedAt,
	}
}

// handleUniforms handles GET (list), POST (add), and DELETE for
// /api/uniforms. Stock is squadron-communal, so any signed-in user may
// add or remove items.
func handleUniforms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		items, err := stores.UniformStore.List(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		names, err := userNames(r)
		if err != nil {
			internalError(w, err)
			return
		}

		out := make([]uniformJSON, 0, len(items))
		for _, i := range items {
			out = append(out, toUniformJSON(i, names))
		}
		writeJSON(w, http.StatusOK, out)

	case "POST":
		var input struct {
			Type      string `json:"type"`
			Size      string `json:"size"`
			Condition string `json:"condition"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		sess, _ := middleware.GetSessionFromContext(r.Context())
		item := uniformDomain.Item{
			ID:        generateID(),
			Type:      input.Type,
			Size:      input.Size,
			Condition: input.Condition,
			AddedByID: sess.UserID,
			AddedAt:   timeNow(),
		}
		if err := item.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.UniformStore.Save(r.Context(), item); err != nil {
			appError(w, err)
			return
		}

		recordAudit(r, auditDomain.CategoryUniform, auditDomain.ActionCreate, "uniform", item.ID,
			item.Type+" ("+item.Size+")")
		names := map[string]string{sess.UserID: sess.FullName}
		writeJSON(w, http.StatusCreated, toUniformJSON(item, names))

	case "DELETE":
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		if err := stores.UniformStore.Delete(r.Context(), id); err != nil {
			appError(w, err)
			return
		}
		recordAudit(r, auditDomain.CategoryUniform, auditDomain.ActionDelete, "uniform", id, "item removed")
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
