package web

import (
	"net/http"
	"time"

	"sqnportal/internal/adapters/http/middleware"
	auditDomain "sqnportal/internal/domain/audit"
	"sqnportal/internal/domain/duty"
	lessonDomain "sqnportal/internal/domain/lesson"
)

// lessonJSON is the wire shape for a lesson. The markdown description is
// rendered server-side so the client never interprets raw markdown.
type lessonJSON struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"descriptionHtml"`
	LessonDate      time.Time `json:"lessonDate"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	AssignedCount   int       `json:"assignedCount"`
}

func toLessonJSON(l lessonDomain.Lesson, assignedCount int) lessonJSON {
	return lessonJSON{
		ID:              l.ID,
		Title:           l.Title,
		Description:     l.Description,
		DescriptionHTML: renderMarkdown(l.Description),
		LessonDate:      l.LessonDate,
		CreatedBy:       l.CreatedBy,
		CreatedAt:       l.CreatedAt,
		AssignedCount:   assignedCount,
	}
}

// handleListLessons handles GET /api/lessons: newest lesson date first, with
// assignment counts.
func handleListLessons(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	lessons, err := stores.LessonStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	out := make([]lessonJSON, 0, len(lessons))
	for _, l := range lessons {
		assignments, err := stores.LessonStore.ListAssignments(r.Context(), l.ID)
		if err != nil {
			internalError(w, err)
			return
		}
		out = append(out, toLessonJSON(l, len(assignments)))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMyLessons handles GET /api/lessons/mine: lessons the caller is
// assigned to attend.
func handleMyLessons(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	lessons, err := stores.LessonStore.ListByAssignee(r.Context(), sess.UserID)
	if err != nil {
		internalError(w, err)
		return
	}

	out := make([]lessonJSON, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, toLessonJSON(l, 0))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetLesson handles GET /api/lesson?id=: one lesson with its
// assignments (names resolved) and attached resources.
func handleGetLesson(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	l, err := stores.LessonStore.GetByID(r.Context(), id)
	if err != nil {
		appError(w, err)
		return
	}
	assignments, err := stores.LessonStore.ListAssignments(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	resources, err := stores.LessonStore.ListResources(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}
	names, err := userNames(r)
	if err != nil {
		internalError(w, err)
		return
	}

	type assigneeJSON struct {
		UserID   string `json:"userId"`
		FullName string `json:"fullName"`
	}
	type resourceJSON struct {
		ID         string    `json:"id"`
		FileName   string    `json:"fileName"`
		FilePath   string    `json:"filePath"`
		UploadedAt time.Time `json:"uploadedAt"`
	}

	assignees := make([]assigneeJSON, 0, len(assignments))
	for _, a := range assignments {
		assignees = append(assignees, assigneeJSON{UserID: a.UserID, FullName: names[a.UserID]})
	}
	files := make([]resourceJSON, 0, len(resources))
	for _, res := range resources {
		files = append(files, resourceJSON{ID: res.ID, FileName: res.FileName, FilePath: res.FilePath, UploadedAt: res.UploadedAt})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lesson":    toLessonJSON(l, len(assignments)),
		"assignees": assignees,
		"resources": files,
	})
}

// handleRotaFeed handles GET /api/rota-feed: lessons and duties merged into
// one event stream for the calendar page.
func handleRotaFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	duties, err := stores.DutyStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	lessons, err := stores.LessonStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	names, err := userNames(r)
	if err != nil {
		internalError(w, err)
		return
	}

	type feedEvent struct {
		Type  string `json:"type"` // "duty" or "lesson"
		ID    string `json:"id"`
		Date  string `json:"date"`
		Title string `json:"title"`
		Color string `json:"color,omitempty"`
	}

	events := make([]feedEvent, 0, len(duties)+len(lessons))
	for _, d := range duties {
		events = append(events, feedEvent{
			Type:  "duty",
			ID:    d.ID,
			Date:  d.DutyDate.Format(duty.DateFormat),
			Title: "Duty: " + names[d.ActualSeniorID] + " / " + names[d.ActualJuniorID],
			Color: d.Color(),
		})
	}
	for _, l := range lessons {
		events = append(events, feedEvent{
			Type:  "lesson",
			ID:    l.ID,
			Date:  l.LessonDate.Format(duty.DateFormat),
			Title: l.Title,
		})
	}
	writeJSON(w, http.StatusOK, events)
}

// handleAdminLessons handles POST (create), PUT (update), and DELETE for
// /api/admin/lessons
func handleAdminLessons(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST", "PUT":
		var input struct {
			ID          string `json:"id"` // required for PUT
			Title       string `json:"title"`
			Description string `json:"description"`
			LessonDate  string `json:"lessonDate"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		lessonDate, err := duty.NormalizeDate(input.LessonDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var l lessonDomain.Lesson
		action := auditDomain.ActionCreate
		if r.Method == "PUT" {
			action = auditDomain.ActionUpdate
			l, err = stores.LessonStore.GetByID(r.Context(), input.ID)
			if err != nil {
				appError(w, err)
				return
			}
			l.Title = input.Title
			l.Description = input.Description
			l.LessonDate = lessonDate
		} else {
			sess, _ := middleware.GetSessionFromContext(r.Context())
			l = lessonDomain.Lesson{
				ID:          generateID(),
				Title:       input.Title,
				Description: input.Description,
				LessonDate:  lessonDate,
				CreatedBy:   sess.UserID,
				CreatedAt:   timeNow(),
			}
		}

		if err := l.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.LessonStore.Save(r.Context(), l); err != nil {
			appError(w, err)
			return
		}

		recordAudit(r, auditDomain.CategoryLesson, action, "lesson", l.ID, l.Title)
		status := http.StatusOK
		if r.Method == "POST" {
			status = http.StatusCreated
		}
		writeJSON(w, status, toLessonJSON(l, 0))

	case "DELETE":
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		if err := stores.LessonStore.Delete(r.Context(), id); err != nil {
			appError(w, err)
			return
		}
		recordAudit(r, auditDomain.CategoryLesson, auditDomain.ActionDelete, "lesson", id, "lesson deleted")
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminLessonAssignments handles POST (assign) and DELETE (unassign)
// for /api/admin/lessons/assignments
func handleAdminLessonAssignments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		var input struct {
			LessonID string `json:"lessonId"`
			UserID   string `json:"userId"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		a := lessonDomain.Assignment{
			ID:       generateID(),
			LessonID: input.LessonID,
			UserID:   input.UserID,
		}
		if err := a.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.LessonStore.SaveAssignment(r.Context(), a); err != nil {
			appError(w, err)
			return
		}

		recordAudit(r, auditDomain.CategoryLesson, auditDomain.ActionUpdate, "lesson", a.LessonID, "assigned user "+a.UserID)
		w.WriteHeader(http.StatusCreated)

	case "DELETE":
		lessonID := r.URL.Query().Get("lesson_id")
		userID := r.URL.Query().Get("user_id")
		if lessonID == "" || userID == "" {
			http.Error(w, "missing lesson_id or user_id", http.StatusBadRequest)
			return
		}
		if err := stores.LessonStore.DeleteAssignment(r.Context(), lessonID, userID); err != nil {
			appError(w, err)
			return
		}
		recordAudit(r, auditDomain.CategoryLesson, auditDomain.ActionUpdate, "lesson", lessonID, "unassigned user "+userID)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminLessonResources handles POST (attach record) and DELETE for
// /api/admin/lessons/resources. Only the record is managed here; upload
// transport lives outside the portal.
func handleAdminLessonResources(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		var input struct {
			LessonID string `json:"lessonId"`
			FileName string `json:"fileName"`
			FilePath string `json:"filePath"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		res := lessonDomain.Resource{
			ID:         generateID(),
			LessonID:   input.LessonID,
			FileName:   input.FileName,
			FilePath:   input.FilePath,
			UploadedAt: timeNow(),
		}
		if err := res.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.LessonStore.SaveResource(r.Context(), res); err != nil {
			appError(w, err)
			return
		}

		recordAudit(r, auditDomain.CategoryLesson, auditDomain.ActionUpdate, "lesson", res.LessonID, "attached resource "+res.FileName)
		writeJSON(w, http.StatusCreated, map[string]string{"id": res.ID})

	case "DELETE":
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		res, err := stores.LessonStore.GetResource(r.Context(), id)
		if err != nil {
			appError(w, err)
			return
		}
		if err := stores.LessonStore.DeleteResource(r.Context(), id); err != nil {
			appError(w, err)
			return
		}
		recordAudit(r, auditDomain.CategoryLesson, auditDomain.ActionUpdate, "lesson", res.LessonID, "removed resource "+res.FileName)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
