package orchestrators

import (
	"context"
	"testing"
	"time"

	"sqnportal/internal/adapters/email"
	"sqnportal/internal/apperr"
	"sqnportal/internal/domain/duty"
	"sqnportal/internal/domain/user"
)

// mockDutyStore implements DutyStore keyed by civil date string.
type mockDutyStore struct {
	rows  map[string]duty.Rota
	saves int
}

func newMockDutyStore() *mockDutyStore {
	return &mockDutyStore{rows: make(map[string]duty.Rota)}
}

func (m *mockDutyStore) Save(_ context.Context, r duty.Rota) error {
	m.saves++
	m.rows[r.DutyDate.Format(duty.DateFormat)] = r
	return nil
}

func (m *mockDutyStore) GetByDate(_ context.Context, date time.Time) (duty.Rota, error) {
	r, ok := m.rows[date.Format(duty.DateFormat)]
	if !ok {
		return duty.Rota{}, apperr.New(apperr.KindNotFound, "no duty rostered for that date")
	}
	return r, nil
}

func (m *mockDutyStore) DeleteByDate(_ context.Context, date time.Time) error {
	key := date.Format(duty.DateFormat)
	if _, ok := m.rows[key]; !ok {
		return apperr.New(apperr.KindNotFound, "no duty rostered for that date")
	}
	delete(m.rows, key)
	return nil
}

// mockUserLookup implements UserLookupStore.
type mockUserLookup struct {
	users map[string]user.User
}

func (m *mockUserLookup) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	return u, nil
}

func fourUsers() *mockUserLookup {
	return &mockUserLookup{users: map[string]user.User{
		"u1": {ID: "u1", FullName: "Barry Loggins"},
		"u2": {ID: "u2", FullName: "Carol Rivers"},
		"u3": {ID: "u3", FullName: "Dave Hills"},
	}}
}

// captureSender records send requests.
type captureSender struct {
	sent []email.SendRequest
}

func (c *captureSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	c.sent = append(c.sent, req)
	return email.SendResult{MessageID: "m1"}, nil
}

var testActor = Actor{ID: "admin1", FullName: "The Admin", Role: "admin"}

// TestExecuteUpsertDuty_Create tests a first assignment on an empty date.
func TestExecuteUpsertDuty_Create(t *testing.T) {
	store := newMockDutyStore()
	sender := &captureSender{}
	r, err := ExecuteUpsertDuty(context.Background(), testActor, UpsertDutyInput{
		Date: "2026-02-07", SeniorID: "u1", JuniorID: "u2",
	}, UpsertDutyDeps{
		DutyStore: store, UserStore: fourUsers(),
		Notify: sender, NotifyAddress: "duty@sqn.example",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.OriginalSeniorID != "u1" || r.ActualSeniorID != "u1" {
		t.Errorf("expected originals to default to actuals, got %+v", r)
	}
	if r.SeniorStatus != duty.StatusUnconfirmed || r.JuniorStatus != duty.StatusUnconfirmed {
		t.Errorf("expected unconfirmed statuses, got %+v", r)
	}
	if r.ID == "" {
		t.Error("expected a generated ID")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sender.sent))
	}
	if sender.sent[0].To[0] != "duty@sqn.example" {
		t.Errorf("notification sent to %v", sender.sent[0].To)
	}
}

// TestExecuteUpsertDuty_UpdateKeepsOriginals tests that reassignment never
// touches the original pair and resets only the changed slot's status.
func TestExecuteUpsertDuty_UpdateKeepsOriginals(t *testing.T) {
	store := newMockDutyStore()
	deps := UpsertDutyDeps{DutyStore: store, UserStore: fourUsers()}

	first, err := ExecuteUpsertDuty(context.Background(), testActor, UpsertDutyInput{
		Date: "2026-02-07", SeniorID: "u1", JuniorID: "u2",
	}, deps)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Junior attends, then the senior is replaced.
	first.JuniorStatus = duty.StatusAttended
	store.rows["2026-02-07"] = first

	updated, err := ExecuteUpsertDuty(context.Background(), testActor, UpsertDutyInput{
		Date: "2026-02-07", SeniorID: "u3", JuniorID: "u2",
	}, deps)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.OriginalSeniorID != "u1" || updated.OriginalJuniorID != "u2" {
		t.Errorf("originals changed: %+v", updated)
	}
	if updated.ActualSeniorID != "u3" {
		t.Errorf("ActualSeniorID = %q, want u3", updated.ActualSeniorID)
	}
	if updated.SeniorStatus != duty.StatusUnconfirmed {
		t.Errorf("replaced slot status = %q, want unconfirmed", updated.SeniorStatus)
	}
	if updated.JuniorStatus != duty.StatusAttended {
		t.Errorf("unchanged slot status = %q, want attended", updated.JuniorStatus)
	}
	if updated.ID != first.ID {
		t.Errorf("row identity changed on update: %q vs %q", updated.ID, first.ID)
	}
}

// TestExecuteUpsertDuty_Rejections tests that invalid input writes nothing.
func TestExecuteUpsertDuty_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input UpsertDutyInput
	}{
		{"bad date", UpsertDutyInput{Date: "07/02/2026", SeniorID: "u1", JuniorID: "u2"}},
		{"same person", UpsertDutyInput{Date: "2026-02-07", SeniorID: "u1", JuniorID: "u1"}},
		{"unknown senior", UpsertDutyInput{Date: "2026-02-07", SeniorID: "ghost", JuniorID: "u2"}},
		{"unknown junior", UpsertDutyInput{Date: "2026-02-07", SeniorID: "u1", JuniorID: "ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockDutyStore()
			_, err := ExecuteUpsertDuty(context.Background(), testActor, tt.input,
				UpsertDutyDeps{DutyStore: store, UserStore: fourUsers()})
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("kind = %v, want validation", apperr.KindOf(err))
			}
			if store.saves != 0 {
				t.Errorf("store written %d times on invalid input", store.saves)
			}
		})
	}
}

// TestExecuteUpsertDuty_RFC3339Date tests that timestamp input lands on the
// UTC calendar date.
func TestExecuteUpsertDuty_RFC3339Date(t *testing.T) {
	store := newMockDutyStore()
	r, err := ExecuteUpsertDuty(context.Background(), testActor, UpsertDutyInput{
		Date: "2026-02-07T20:00:00+13:00", SeniorID: "u1", JuniorID: "u2",
	}, UpsertDutyDeps{DutyStore: store, UserStore: fourUsers()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.DutyDate.Format(duty.DateFormat); got != "2026-02-07" {
		t.Errorf("duty date = %s, want 2026-02-07", got)
	}
}

// TestExecuteDeleteDuty tests delete and its not-found passthrough.
func TestExecuteDeleteDuty(t *testing.T) {
	store := newMockDutyStore()
	deps := UpsertDutyDeps{DutyStore: store, UserStore: fourUsers()}

	if _, err := ExecuteUpsertDuty(context.Background(), testActor, UpsertDutyInput{
		Date: "2026-02-07", SeniorID: "u1", JuniorID: "u2",
	}, deps); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := ExecuteDeleteDuty(context.Background(), testActor, DeleteDutyInput{Date: "2026-02-07"}, deps); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	err := ExecuteDeleteDuty(context.Background(), testActor, DeleteDutyInput{Date: "2026-02-07"}, deps)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("second delete kind = %v, want not found", apperr.KindOf(err))
	}
}
