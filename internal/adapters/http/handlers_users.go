package web

import (
	"net/http"

	"sqnportal/internal/application/orchestrators"
)

// handleAdminUsers handles POST (create) and PUT (update) for /api/admin/users
func handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		var input struct {
			Username string `json:"username"`
			FullName string `json:"fullName"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		u, err := orchestrators.ExecuteCreateUser(r.Context(), currentActor(r), orchestrators.CreateUserInput{
			Username: input.Username,
			FullName: input.FullName,
			Password: input.Password,
			Role:     input.Role,
		}, orchestrators.CreateUserDeps{UserStore: stores.UserStore, Audit: stores.AuditStore})
		if err != nil {
			appError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toUserJSON(u))

	case "PUT":
		var input struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			FullName string `json:"fullName"`
			Password string `json:"password"` // empty keeps the current password
			Role     string `json:"role"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		u, err := orchestrators.ExecuteUpdateUser(r.Context(), currentActor(r), orchestrators.UpdateUserInput{
			UserID:   input.ID,
			Username: input.Username,
			FullName: input.FullName,
			Password: input.Password,
			Role:     input.Role,
		}, orchestrators.CreateUserDeps{UserStore: stores.UserStore, Audit: stores.AuditStore})
		if err != nil {
			appError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserJSON(u))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminDeleteUser handles POST /api/admin/users/delete
func handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		ID string `json:"id"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteDeleteUser(r.Context(), currentActor(r), orchestrators.DeleteUserInput{
		UserID: input.ID,
	}, orchestrators.DeleteUserDeps{UserStore: stores.UserStore, Audit: stores.AuditStore})
	if err != nil {
		appError(w, err)
		return
	}

	// Any live sessions for the deleted account die with it.
	sessions.DeleteForUser(input.ID)

	w.WriteHeader(http.StatusNoContent)
}
