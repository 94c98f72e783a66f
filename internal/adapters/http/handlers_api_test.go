package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sqnportal/internal/adapters/http/middleware"
	auditStorePkg "sqnportal/internal/adapters/storage/audit"
	"sqnportal/internal/apperr"

	absenceDomain "sqnportal/internal/domain/absence"
	assessmentDomain "sqnportal/internal/domain/assessment"
	auditDomain "sqnportal/internal/domain/audit"
	cadetDomain "sqnportal/internal/domain/cadet"
	"sqnportal/internal/domain/duty"
	lessonDomain "sqnportal/internal/domain/lesson"
	uniformDomain "sqnportal/internal/domain/uniform"
	userDomain "sqnportal/internal/domain/user"
)

// --- Mock stores ---

type mockUserStore struct {
	users map[string]userDomain.User
}

// GetByID implements the user store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or a not-found error
func (m *mockUserStore) GetByID(ctx context.Context, id string) (userDomain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return userDomain.User{}, apperr.New(apperr.KindNotFound, "user not found")
}

// GetByUsername implements the user store interface for testing.
// PRE: username is non-empty
// POST: Returns the entity or a not-found error
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (userDomain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return userDomain.User{}, apperr.New(apperr.KindNotFound, "user not found")
}

// Save implements the user store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockUserStore) Save(ctx context.Context, u userDomain.User) error {
	if m.users == nil {
		m.users = make(map[string]userDomain.User)
	}
	m.users[u.ID] = u
	return nil
}

// List implements the user store interface for testing.
// PRE: none
// POST: Returns all users
func (m *mockUserStore) List(ctx context.Context) ([]userDomain.User, error) {
	var list []userDomain.User
	for _, u := range m.users {
		list = append(list, u)
	}
	return list, nil
}

// DeleteCascade implements the user store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockUserStore) DeleteCascade(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	delete(m.users, id)
	return nil
}

type mockDutyStore struct {
	byDate map[string]duty.Rota
}

// Save implements the duty store interface for testing.
// PRE: rota has been validated
// POST: Entity is persisted
func (m *mockDutyStore) Save(ctx context.Context, r duty.Rota) error {
	if m.byDate == nil {
		m.byDate = make(map[string]duty.Rota)
	}
	m.byDate[r.DutyDate.Format(duty.DateFormat)] = r
	return nil
}

// GetByDate implements the duty store interface for testing.
// PRE: date is non-zero
// POST: Returns the entity or a not-found error
func (m *mockDutyStore) GetByDate(ctx context.Context, date time.Time) (duty.Rota, error) {
	if r, ok := m.byDate[date.Format(duty.DateFormat)]; ok {
		return r, nil
	}
	return duty.Rota{}, apperr.New(apperr.KindNotFound, "no duty rostered for that date")
}

// DeleteByDate implements the duty store interface for testing.
// PRE: date is non-zero
// POST: Entity for given date is removed
func (m *mockDutyStore) DeleteByDate(ctx context.Context, date time.Time) error {
	key := date.Format(duty.DateFormat)
	if _, ok := m.byDate[key]; !ok {
		return apperr.New(apperr.KindNotFound, "no duty rostered for that date")
	}
	delete(m.byDate, key)
	return nil
}

// List implements the duty store interface for testing.
// PRE: none
// POST: Returns all rota rows
func (m *mockDutyStore) List(ctx context.Context) ([]duty.Rota, error) {
	var list []duty.Rota
	for _, r := range m.byDate {
		list = append(list, r)
	}
	return list, nil
}

// ListByUser implements the duty store interface for testing.
// PRE: userID is non-empty
// POST: Returns rows where the user appears
func (m *mockDutyStore) ListByUser(ctx context.Context, userID string) ([]duty.Rota, error) {
	var list []duty.Rota
	for _, r := range m.byDate {
		if r.OriginalSeniorID == userID || r.OriginalJuniorID == userID ||
			r.ActualSeniorID == userID || r.ActualJuniorID == userID {
			list = append(list, r)
		}
	}
	return list, nil
}

// CountAttendedSenior implements the duty store interface for testing.
// PRE: none
// POST: Returns attended senior counts per user
func (m *mockDutyStore) CountAttendedSenior(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, r := range m.byDate {
		if r.SeniorStatus == duty.StatusAttended {
			counts[r.ActualSeniorID]++
		}
	}
	return counts, nil
}

// CountAttendedJunior implements the duty store interface for testing.
// PRE: none
// POST: Returns attended junior counts per user
func (m *mockDutyStore) CountAttendedJunior(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, r := range m.byDate {
		if r.JuniorStatus == duty.StatusAttended {
			counts[r.ActualJuniorID]++
		}
	}
	return counts, nil
}

type mockLessonStore struct {
	lessons     map[string]lessonDomain.Lesson
	assignments map[string]lessonDomain.Assignment
	resources   map[string]lessonDomain.Resource
}

func (m *mockLessonStore) Save(ctx context.Context, l lessonDomain.Lesson) error {
	if m.lessons == nil {
		m.lessons = make(map[string]lessonDomain.Lesson)
	}
	m.lessons[l.ID] = l
	return nil
}

func (m *mockLessonStore) GetByID(ctx context.Context, id string) (lessonDomain.Lesson, error) {
	if l, ok := m.lessons[id]; ok {
		return l, nil
	}
	return lessonDomain.Lesson{}, apperr.New(apperr.KindNotFound, "lesson not found")
}

func (m *mockLessonStore) List(ctx context.Context) ([]lessonDomain.Lesson, error) {
	var list []lessonDomain.Lesson
	for _, l := range m.lessons {
		list = append(list, l)
	}
	return list, nil
}

func (m *mockLessonStore) ListByAssignee(ctx context.Context, userID string) ([]lessonDomain.Lesson, error) {
	return nil, nil
}

func (m *mockLessonStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.lessons[id]; !ok {
		return apperr.New(apperr.KindNotFound, "lesson not found")
	}
	delete(m.lessons, id)
	return nil
}

func (m *mockLessonStore) SaveAssignment(ctx context.Context, a lessonDomain.Assignment) error {
	if m.assignments == nil {
		m.assignments = make(map[string]lessonDomain.Assignment)
	}
	for _, existing := range m.assignments {
		if existing.LessonID == a.LessonID && existing.UserID == a.UserID {
			return apperr.New(apperr.KindConflict, "user is already assigned to this lesson")
		}
	}
	m.assignments[a.ID] = a
	return nil
}

func (m *mockLessonStore) ListAssignments(ctx context.Context, lessonID string) ([]lessonDomain.Assignment, error) {
	var list []lessonDomain.Assignment
	for _, a := range m.assignments {
		if a.LessonID == lessonID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockLessonStore) DeleteAssignment(ctx context.Context, lessonID, userID string) error {
	for id, a := range m.assignments {
		if a.LessonID == lessonID && a.UserID == userID {
			delete(m.assignments, id)
			return nil
		}
	}
	return apperr.New(apperr.KindNotFound, "assignment not found")
}

func (m *mockLessonStore) SaveResource(ctx context.Context, r lessonDomain.Resource) error {
	if m.resources == nil {
		m.resources = make(map[string]lessonDomain.Resource)
	}
	m.resources[r.ID] = r
	return nil
}

func (m *mockLessonStore) ListResources(ctx context.Context, lessonID string) ([]lessonDomain.Resource, error) {
	var list []lessonDomain.Resource
	for _, r := range m.resources {
		if r.LessonID == lessonID {
			list = append(list, r)
		}
	}
	return list, nil
}

func (m *mockLessonStore) GetResource(ctx context.Context, id string) (lessonDomain.Resource, error) {
	if r, ok := m.resources[id]; ok {
		return r, nil
	}
	return lessonDomain.Resource{}, apperr.New(apperr.KindNotFound, "resource not found")
}

func (m *mockLessonStore) DeleteResource(ctx context.Context, id string) error {
	if _, ok := m.resources[id]; !ok {
		return apperr.New(apperr.KindNotFound, "resource not found")
	}
	delete(m.resources, id)
	return nil
}

type mockAbsenceStore struct {
	absences map[string]absenceDomain.Absence
}

func (m *mockAbsenceStore) Save(ctx context.Context, a absenceDomain.Absence) error {
	if m.absences == nil {
		m.absences = make(map[string]absenceDomain.Absence)
	}
	m.absences[a.ID] = a
	return nil
}

func (m *mockAbsenceStore) GetByID(ctx context.Context, id string) (absenceDomain.Absence, error) {
	if a, ok := m.absences[id]; ok {
		return a, nil
	}
	return absenceDomain.Absence{}, apperr.New(apperr.KindNotFound, "absence not found")
}

func (m *mockAbsenceStore) List(ctx context.Context) ([]absenceDomain.Absence, error) {
	var list []absenceDomain.Absence
	for _, a := range m.absences {
		list = append(list, a)
	}
	return list, nil
}

func (m *mockAbsenceStore) ListByUser(ctx context.Context, userID string) ([]absenceDomain.Absence, error) {
	var list []absenceDomain.Absence
	for _, a := range m.absences {
		if a.UserID == userID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockAbsenceStore) ListCovering(ctx context.Context, date time.Time) ([]absenceDomain.Absence, error) {
	var list []absenceDomain.Absence
	for _, a := range m.absences {
		if a.Covers(date) {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockAbsenceStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.absences[id]; !ok {
		return apperr.New(apperr.KindNotFound, "absence not found")
	}
	delete(m.absences, id)
	return nil
}

type mockUniformStore struct {
	items map[string]uniformDomain.Item
}

func (m *mockUniformStore) Save(ctx context.Context, i uniformDomain.Item) error {
	if m.items == nil {
		m.items = make(map[string]uniformDomain.Item)
	}
	m.items[i.ID] = i
	return nil
}

func (m *mockUniformStore) GetByID(ctx context.Context, id string) (uniformDomain.Item, error) {
	if i, ok := m.items[id]; ok {
		return i, nil
	}
	return uniformDomain.Item{}, apperr.New(apperr.KindNotFound, "item not found")
}

func (m *mockUniformStore) List(ctx context.Context) ([]uniformDomain.Item, error) {
	var list []uniformDomain.Item
	for _, i := range m.items {
		list = append(list, i)
	}
	return list, nil
}

func (m *mockUniformStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return apperr.New(apperr.KindNotFound, "item not found")
	}
	delete(m.items, id)
	return nil
}

type mockCadetStore struct {
	cadets map[string]cadetDomain.Cadet
}

func (m *mockCadetStore) Save(ctx context.Context, c cadetDomain.Cadet) error {
	if m.cadets == nil {
		m.cadets = make(map[string]cadetDomain.Cadet)
	}
	m.cadets[c.ID] = c
	return nil
}

func (m *mockCadetStore) GetByID(ctx context.Context, id string) (cadetDomain.Cadet, error) {
	if c, ok := m.cadets[id]; ok {
		return c, nil
	}
	return cadetDomain.Cadet{}, apperr.New(apperr.KindNotFound, "cadet not found")
}

func (m *mockCadetStore) List(ctx context.Context) ([]cadetDomain.Cadet, error) {
	var list []cadetDomain.Cadet
	for _, c := range m.cadets {
		list = append(list, c)
	}
	return list, nil
}

func (m *mockCadetStore) ListByIDs(ctx context.Context, ids []string) (map[string]cadetDomain.Cadet, error) {
	out := make(map[string]cadetDomain.Cadet)
	for _, id := range ids {
		if c, ok := m.cadets[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *mockCadetStore) Delete(ctx context.Context, id string) error {
	delete(m.cadets, id)
	return nil
}

type mockAssessmentStore struct {
	cohorts     map[string]assessmentDomain.Cohort
	assessments map[string]assessmentDomain.RadioAssessment
	cadets      *mockCadetStore
}

func (m *mockAssessmentStore) SaveCohort(ctx context.Context, c assessmentDomain.Cohort) error {
	if m.cohorts == nil {
		m.cohorts = make(map[string]assessmentDomain.Cohort)
	}
	m.cohorts[c.ID] = c
	return nil
}

func (m *mockAssessmentStore) GetCohort(ctx context.Context, id string) (assessmentDomain.Cohort, error) {
	if c, ok := m.cohorts[id]; ok {
		return c, nil
	}
	return assessmentDomain.Cohort{}, apperr.New(apperr.KindNotFound, "cohort not found")
}

func (m *mockAssessmentStore) ListCohorts(ctx context.Context) ([]assessmentDomain.Cohort, error) {
	var list []assessmentDomain.Cohort
	for _, c := range m.cohorts {
		list = append(list, c)
	}
	return list, nil
}

func (m *mockAssessmentStore) DeleteCohort(ctx context.Context, id string) error {
	if _, ok := m.cohorts[id]; !ok {
		return apperr.New(apperr.KindNotFound, "cohort not found")
	}
	delete(m.cohorts, id)
	return nil
}

func (m *mockAssessmentStore) Save(ctx context.Context, a assessmentDomain.RadioAssessment) error {
	if m.assessments == nil {
		m.assessments = make(map[string]assessmentDomain.RadioAssessment)
	}
	m.assessments[a.ID] = a
	return nil
}

func (m *mockAssessmentStore) GetByID(ctx context.Context, id string) (assessmentDomain.RadioAssessment, error) {
	if a, ok := m.assessments[id]; ok {
		return a, nil
	}
	return assessmentDomain.RadioAssessment{}, apperr.New(apperr.KindNotFound, "assessment not found")
}

func (m *mockAssessmentStore) ListByCohort(ctx context.Context, cohortID string) ([]assessmentDomain.RadioAssessment, error) {
	var list []assessmentDomain.RadioAssessment
	for _, a := range m.assessments {
		if a.CohortID == cohortID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockAssessmentStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.assessments[id]; !ok {
		return apperr.New(apperr.KindNotFound, "assessment not found")
	}
	delete(m.assessments, id)
	return nil
}

func (m *mockAssessmentStore) CreateWithCadet(ctx context.Context, c cadetDomain.Cadet, a assessmentDomain.RadioAssessment) error {
	if m.cadets != nil {
		m.cadets.Save(ctx, c)
	}
	return m.Save(ctx, a)
}

type mockAuditStore struct {
	events []auditDomain.Event
}

func (m *mockAuditStore) Save(ctx context.Context, event auditDomain.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockAuditStore) List(ctx context.Context, filter auditStorePkg.Filter, limit int) ([]auditDomain.Event, error) {
	return m.events, nil
}

// --- Test fixtures ---

// newTestStores wires mock stores with two users and installs them as the
// package globals the handlers read.
func newTestStores(t *testing.T) *Stores {
	t.Helper()
	users := &mockUserStore{users: map[string]userDomain.User{
		"u1": {ID: "u1", Username: "amy", FullName: "Amy Cole", Role: userDomain.RoleUser},
		"u2": {ID: "u2", Username: "barry", FullName: "Barry Loggins", Role: userDomain.RoleUser},
		"a1": {ID: "a1", Username: "admin", FullName: "The Admin", Role: userDomain.RoleAdmin},
	}}
	cadets := &mockCadetStore{cadets: make(map[string]cadetDomain.Cadet)}
	s := &Stores{
		UserStore:       users,
		DutyStore:       &mockDutyStore{byDate: make(map[string]duty.Rota)},
		LessonStore:     &mockLessonStore{},
		AbsenceStore:    &mockAbsenceStore{absences: make(map[string]absenceDomain.Absence)},
		UniformStore:    &mockUniformStore{},
		CadetStore:      cadets,
		AssessmentStore: &mockAssessmentStore{cadets: cadets},
		AuditStore:      &mockAuditStore{},
	}
	stores = s
	sessions = middleware.NewSessionStore()
	return s
}

func sessionFor(id, username, fullName, role string) middleware.Session {
	return middleware.Session{UserID: id, Username: username, FullName: fullName, Role: role, CreatedAt: time.Now()}
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- Tests ---

// TestRouteGating verifies the auth and role gates on the route groups.
func TestRouteGating(t *testing.T) {
	s := newTestStores(t)
	RateLimitPerSecond = 1000
	mux := NewMux(t.TempDir(), s)

	userToken, err := sessions.Create("u1", "amy", "Amy Cole", userDomain.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	adminToken, err := sessions.Create("a1", "admin", "The Admin", userDomain.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		token  string
		want   int
	}{
		{"unauthenticated duties", "GET", "/api/duties", nil, "", http.StatusUnauthorized},
		{"unauthenticated admin", "POST", "/api/admin/duties", map[string]string{}, "", http.StatusUnauthorized},
		{"user lists duties", "GET", "/api/duties", nil, userToken, http.StatusOK},
		{"user blocked from admin", "POST", "/api/admin/duties", map[string]string{}, userToken, http.StatusForbidden},
		{"user blocked from audit", "GET", "/api/admin/audit", nil, userToken, http.StatusForbidden},
		{"admin reads audit", "GET", "/api/admin/audit", nil, adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(tt.method, tt.path, tt.body)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: "sqnportal_session", Value: tt.token})
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %q)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

// TestHandleLogin tests credential checking and session cookie issuance.
func TestHandleLogin(t *testing.T) {
	s := newTestStores(t)
	u := s.UserStore.(*mockUserStore).users["u1"]
	if err := u.SetPassword("hunter2hunter2"); err != nil {
		t.Fatal(err)
	}
	s.UserStore.(*mockUserStore).users["u1"] = u

	rec := httptest.NewRecorder()
	handleLogin(rec, jsonRequest("POST", "/api/login", map[string]string{
		"Username": "amy", "Password": "hunter2hunter2",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "sqnportal_session=") {
		t.Errorf("session cookie not set: %q", cookie)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["fullName"] != "Amy Cole" {
		t.Errorf("fullName = %q", resp["fullName"])
	}

	// Wrong password gets a 401 and the generic message.
	rec = httptest.NewRecorder()
	handleLogin(rec, jsonRequest("POST", "/api/login", map[string]string{
		"Username": "amy", "Password": "wrong-password",
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid username or password") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// TestHandleConfirmDuty_Ownership tests that non-admins can only confirm the
// slot they actually hold.
func TestHandleConfirmDuty_Ownership(t *testing.T) {
	s := newTestStores(t)
	date, err := duty.NormalizeDate("2026-03-07")
	if err != nil {
		t.Fatal(err)
	}
	r := duty.New(date, "u1", "u2")
	r.ID = "d1"
	if err := s.DutyStore.Save(context.Background(), r); err != nil {
		t.Fatal(err)
	}

	// Barry holds the junior slot; he cannot confirm the senior one.
	req := jsonRequest("POST", "/api/duties/confirm", map[string]string{
		"date": "2026-03-07", "role": duty.RoleSenior, "status": duty.StatusAttended,
	})
	req = req.WithContext(middleware.ContextWithSession(req.Context(), sessionFor("u2", "barry", "Barry Loggins", userDomain.RoleUser)))
	rec := httptest.NewRecorder()
	handleConfirmDuty(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	// His own slot is fine.
	req = jsonRequest("POST", "/api/duties/confirm", map[string]string{
		"date": "2026-03-07", "role": duty.RoleJunior, "status": duty.StatusAttended,
	})
	req = req.WithContext(middleware.ContextWithSession(req.Context(), sessionFor("u2", "barry", "Barry Loggins", userDomain.RoleUser)))
	rec = httptest.NewRecorder()
	handleConfirmDuty(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	saved, err := s.DutyStore.GetByDate(context.Background(), date)
	if err != nil {
		t.Fatal(err)
	}
	if saved.JuniorStatus != duty.StatusAttended {
		t.Errorf("junior status = %q, want attended", saved.JuniorStatus)
	}
	if saved.SeniorStatus != duty.StatusUnconfirmed {
		t.Errorf("senior status = %q, want unconfirmed", saved.SeniorStatus)
	}
}

// TestHandleAbsence_Ownership tests the owner-or-admin rule on updates.
func TestHandleAbsence_Ownership(t *testing.T) {
	s := newTestStores(t)
	start, _ := duty.NormalizeDate("2026-04-01")
	end, _ := duty.NormalizeDate("2026-04-03")
	if err := s.AbsenceStore.Save(context.Background(), absenceDomain.Absence{
		ID: "ab1", UserID: "u1", StartDate: start, EndDate: end, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	update := map[string]string{
		"id": "ab1", "startDate": "2026-04-01", "endDate": "2026-04-05", "reason": "camp",
	}

	// Barry does not own it and is not an admin.
	req := jsonRequest("PUT", "/api/absence", update)
	req = req.WithContext(middleware.ContextWithSession(req.Context(), sessionFor("u2", "barry", "Barry Loggins", userDomain.RoleUser)))
	rec := httptest.NewRecorder()
	handleAbsence(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	// An admin may edit anyone's absence.
	req = jsonRequest("PUT", "/api/absence", update)
	req = req.WithContext(middleware.ContextWithSession(req.Context(), sessionFor("a1", "admin", "The Admin", userDomain.RoleAdmin)))
	rec = httptest.NewRecorder()
	handleAbsence(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	saved, err := s.AbsenceStore.GetByID(context.Background(), "ab1")
	if err != nil {
		t.Fatal(err)
	}
	if saved.Reason != "camp" {
		t.Errorf("reason = %q, want camp", saved.Reason)
	}
}

// TestHandleAdminDuties_Upsert tests the full create-then-reassign flow
// through the handler.
func TestHandleAdminDuties_Upsert(t *testing.T) {
	s := newTestStores(t)
	adminSess := sessionFor("a1", "admin", "The Admin", userDomain.RoleAdmin)

	req := jsonRequest("POST", "/api/admin/duties", map[string]string{
		"date": "2026-03-07", "seniorId": "u1", "juniorId": "u2",
	})
	req = req.WithContext(middleware.ContextWithSession(req.Context(), adminSess))
	rec := httptest.NewRecorder()
	handleAdminDuties(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}

	var resp struct {
		Duty     map[string]any `json:"duty"`
		Warnings []string       `json:"warnings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Duty["originalSeniorId"] != "u1" || resp.Duty["seniorName"] != "Amy Cole" {
		t.Errorf("duty = %v", resp.Duty)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", resp.Warnings)
	}

	// Reassigning the senior keeps the original on record.
	req = jsonRequest("POST", "/api/admin/duties", map[string]string{
		"date": "2026-03-07", "seniorId": "a1", "juniorId": "u2",
	})
	req = req.WithContext(middleware.ContextWithSession(req.Context(), adminSess))
	rec = httptest.NewRecorder()
	handleAdminDuties(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Duty["originalSeniorId"] != "u1" || resp.Duty["actualSeniorId"] != "a1" {
		t.Errorf("duty = %v", resp.Duty)
	}

	// An assignee with a covering absence gets flagged, not rejected.
	date, _ := duty.NormalizeDate("2026-03-07")
	if err := s.AbsenceStore.Save(context.Background(), absenceDomain.Absence{
		ID: "ab-clash", UserID: "u2", StartDate: date, EndDate: date, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	req = jsonRequest("POST", "/api/admin/duties", map[string]string{
		"date": "2026-03-07", "seniorId": "a1", "juniorId": "u2",
	})
	req = req.WithContext(middleware.ContextWithSession(req.Context(), adminSess))
	rec = httptest.NewRecorder()
	handleAdminDuties(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Warnings) != 1 || !strings.Contains(resp.Warnings[0], "Barry Loggins") {
		t.Errorf("warnings = %v", resp.Warnings)
	}
}

// TestHandleAdminExportResults tests the PDF export response.
func TestHandleAdminExportResults(t *testing.T) {
	s := newTestStores(t)
	as := s.AssessmentStore.(*mockAssessmentStore)
	as.SaveCohort(context.Background(), assessmentDomain.Cohort{ID: "co1", Name: "Feb intake", Type: "BRO"})
	s.CadetStore.Save(context.Background(), cadetDomain.Cadet{ID: "c1", Sqn: "30", Rank: "CDT", FullName: "B Loggins"})

	a := assessmentDomain.New("co1", "c1")
	a.ID = "as1"
	for _, key := range assessmentDomain.CriterionKeys {
		if err := a.SetCriterion(key, assessmentDomain.StatusPass); err != nil {
			t.Fatal(err)
		}
	}
	as.Save(context.Background(), a)

	req := httptest.NewRequest("GET", "/api/admin/cohorts/export?cohort_id=co1", nil)
	req = req.WithContext(middleware.ContextWithSession(req.Context(), sessionFor("a1", "admin", "The Admin", userDomain.RoleAdmin)))
	rec := httptest.NewRecorder()
	handleAdminExportResults(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("response is not a PDF")
	}
}

// TestHandleAdminUsers_SelfDeleteGuard tests that an admin cannot delete
// their own account through the API.
func TestHandleAdminUsers_SelfDeleteGuard(t *testing.T) {
	newTestStores(t)

	req := jsonRequest("POST", "/api/admin/users/delete", map[string]string{"id": "a1"})
	req = req.WithContext(middleware.ContextWithSession(req.Context(), sessionFor("a1", "admin", "The Admin", userDomain.RoleAdmin)))
	rec := httptest.NewRecorder()
	handleAdminDeleteUser(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %q)", rec.Code, rec.Body.String())
	}

	// Deleting someone else works and kills their sessions.
	token, err := sessions.Create("u2", "barry", "Barry Loggins", userDomain.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	req = jsonRequest("POST", "/api/admin/users/delete", map[string]string{"id": "u2"})
	req = req.WithContext(middleware.ContextWithSession(req.Context(), sessionFor("a1", "admin", "The Admin", userDomain.RoleAdmin)))
	rec = httptest.NewRecorder()
	handleAdminDeleteUser(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if _, ok := sessions.Get(token); ok {
		t.Error("deleted user's session still alive")
	}
}

// TestHandleAddCadetAndCriteria drives the assessment flow end to end
// through the handlers.
func TestHandleAddCadetAndCriteria(t *testing.T) {
	s := newTestStores(t)
	as := s.AssessmentStore.(*mockAssessmentStore)
	as.SaveCohort(context.Background(), assessmentDomain.Cohort{ID: "co1", Name: "Feb intake", Type: "BRO"})
	adminSess := sessionFor("a1", "admin", "The Admin", userDomain.RoleAdmin)

	req := jsonRequest("POST", "/api/admin/cohorts/cadets", map[string]string{
		"cohortId": "co1", "sqn": "30", "rank": "CDT", "fullName": "B Loggins",
	})
	req = req.WithContext(middleware.ContextWithSession(req.Context(), adminSess))
	rec := httptest.NewRecorder()
	handleAdminAddCadet(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}

	var created struct {
		ID       string            `json:"id"`
		Criteria map[string]string `json:"criteria"`
		PassFail bool              `json:"passFail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.PassFail {
		t.Error("new assessment must start unpassed")
	}
	if len(created.Criteria) != len(assessmentDomain.CriterionKeys) {
		t.Errorf("criteria count = %d", len(created.Criteria))
	}

	// Mark one criterion and check the derived state comes back.
	req = jsonRequest("POST", "/api/admin/assessments/criterion", map[string]string{
		"assessmentId": created.ID,
		"criterion":    assessmentDomain.CritFirstClassLogbook,
		"status":       assessmentDomain.StatusPass,
	})
	req = req.WithContext(middleware.ContextWithSession(req.Context(), adminSess))
	rec = httptest.NewRecorder()
	handleAdminSetCriterion(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	var updated struct {
		Criteria map[string]string `json:"criteria"`
		PassFail bool              `json:"passFail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Criteria[assessmentDomain.CritFirstClassLogbook] != assessmentDomain.StatusPass {
		t.Errorf("criterion = %q", updated.Criteria[assessmentDomain.CritFirstClassLogbook])
	}
	if updated.PassFail {
		t.Error("one pass must not flip the aggregate")
	}
}
