package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestSessionStore_CreateGet tests the session round trip.
func TestSessionStore_CreateGet(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("u1", "amy", "Amy Cole", "user")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	sess, ok := ss.Get(token)
	if !ok {
		t.Fatal("session not found")
	}
	if sess.UserID != "u1" || sess.Username != "amy" || sess.Role != "user" {
		t.Errorf("session = %+v", sess)
	}
}

// TestSessionStore_Expiry tests that sessions older than 24 hours are gone.
func TestSessionStore_Expiry(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("u1", "amy", "Amy Cole", "user")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ss.mu.Lock()
	sess := ss.sessions[token]
	sess.CreatedAt = time.Now().Add(-25 * time.Hour)
	ss.sessions[token] = sess
	ss.mu.Unlock()

	if _, ok := ss.Get(token); ok {
		t.Error("expired session still returned")
	}
}

// TestSessionStore_DeleteForUser tests revocation of all of a user's sessions.
func TestSessionStore_DeleteForUser(t *testing.T) {
	ss := NewSessionStore()
	t1, _ := ss.Create("u1", "amy", "Amy Cole", "user")
	t2, _ := ss.Create("u1", "amy", "Amy Cole", "user")
	t3, _ := ss.Create("u2", "barry", "Barry Loggins", "user")

	ss.DeleteForUser("u1")

	if _, ok := ss.Get(t1); ok {
		t.Error("first session survived")
	}
	if _, ok := ss.Get(t2); ok {
		t.Error("second session survived")
	}
	if _, ok := ss.Get(t3); !ok {
		t.Error("unrelated user's session was revoked")
	}
}

// TestRequireRole tests the role gate responses.
func TestRequireRole(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No session at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no session: status = %d, want 401", rec.Code)
	}

	// Wrong role.
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(ContextWithSession(req.Context(), Session{UserID: "u1", Role: "user"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong role: status = %d, want 403", rec.Code)
	}

	// Admin passes.
	req = httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(ContextWithSession(req.Context(), Session{UserID: "a1", Role: "admin"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}

// TestRateLimiter tests the token bucket boundary.
func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d denied within limit", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request over limit allowed")
	}
	// Other IPs have their own bucket.
	if !rl.Allow("5.6.7.8") {
		t.Error("fresh IP denied")
	}
}
