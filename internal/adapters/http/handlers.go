package web

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"sqnportal/internal/adapters/http/middleware"
	"sqnportal/internal/apperr"
	"sqnportal/internal/application/orchestrators"
	auditDomain "sqnportal/internal/domain/audit"
	userDomain "sqnportal/internal/domain/user"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts markdown to sanitized HTML for the client.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return ""
	}
	return buf.String()
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// appError maps a taxonomy error onto its HTTP status. Anything that maps to
// 500 is treated as internal and its message is withheld.
func appError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	http.Error(w, err.Error(), status)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// currentActor builds the audit actor from the request session.
func currentActor(r *http.Request) orchestrators.Actor {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		return orchestrators.Actor{}
	}
	return orchestrators.Actor{ID: sess.UserID, FullName: sess.FullName, Role: sess.Role}
}

// recordAudit persists an audit event best-effort; the request never fails
// because the trail could not be written.
func recordAudit(r *http.Request, category auditDomain.Category, action auditDomain.Action, resourceType, resourceID, description string) {
	if stores == nil || stores.AuditStore == nil {
		return
	}
	actor := currentActor(r)
	event := auditDomain.NewEvent(actor.ID, actor.FullName, actor.Role, category, action).
		WithResource(resourceType, resourceID).
		WithDescription(description)
	if err := stores.AuditStore.Save(r.Context(), event); err != nil {
		slog.Error("audit_write_failed", "error", err.Error(), "category", category, "action", action)
	}
}

// userJSON is the wire shape for a portal user. The password hash never
// leaves the server.
type userJSON struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserJSON(u userDomain.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.LoginInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		UserStore: stores.UserStore,
	})
	if err != nil {
		appError(w, err)
		return
	}

	token, err := sessions.Create(result.UserID, result.Username, result.FullName, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	recordAudit(r, auditDomain.CategorySecurity, auditDomain.ActionLogin, "user", result.UserID, result.Username+" logged in")

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       result.UserID,
		"username": result.Username,
		"fullName": result.FullName,
		"role":     result.Role,
	})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		recordAudit(r, auditDomain.CategorySecurity, auditDomain.ActionLogout, "user", sess.UserID, sess.Username+" logged out")
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me: the caller's own session identity.
func handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       sess.UserID,
		"username": sess.Username,
		"fullName": sess.FullName,
		"role":     sess.Role,
	})
}

// handleListUsers handles GET /api/users: the user directory, ordered by
// full name, for rota dropdowns and name resolution.
func handleListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	users, err := stores.UserStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, toUserJSON(u))
	}
	writeJSON(w, http.StatusOK, out)
}

// userNames resolves user IDs to full names for list annotations.
func userNames(r *http.Request) (map[string]string, error) {
	users, err := stores.UserStore.List(r.Context())
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names, nil
}
