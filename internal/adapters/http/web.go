package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"sqnportal/internal/adapters/email"
	"sqnportal/internal/adapters/http/middleware"
	absenceStore "sqnportal/internal/adapters/storage/absence"
	assessmentStore "sqnportal/internal/adapters/storage/assessment"
	auditStore "sqnportal/internal/adapters/storage/audit"
	cadetStore "sqnportal/internal/adapters/storage/cadet"
	dutyStore "sqnportal/internal/adapters/storage/duty"
	lessonStore "sqnportal/internal/adapters/storage/lesson"
	uniformStore "sqnportal/internal/adapters/storage/uniform"
	userStore "sqnportal/internal/adapters/storage/user"
	"sqnportal/internal/domain/user"
)

// Stores holds all storage dependencies.
type Stores struct {
	UserStore       userStore.Store
	DutyStore       dutyStore.Store
	LessonStore     lessonStore.Store
	AbsenceStore    absenceStore.Store
	UniformStore    uniformStore.Store
	CadetStore      cadetStore.Store
	AssessmentStore assessmentStore.Store
	AuditStore      auditStore.Store
}

// loadCSRFKey reads the CSRF secret from SQNPORTAL_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("SQNPORTAL_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("SQNPORTAL_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("SQNPORTAL_ENV") == "production" {
		log.Fatal("SQNPORTAL_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set SQNPORTAL_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// Squadron inbox that receives duty-change notifications.
var dutyNotifyAddress string

// SetDutyNotifyAddress sets the address notified on duty rota changes.
func SetDutyNotifyAddress(addr string) {
	dutyNotifyAddress = addr
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores) http.Handler {
	stores = s
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("SQNPORTAL_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
	)
}

// registerRoutes wires every API route onto the mux. Everything under
// /api/ except login requires a session; everything under /api/admin/
// additionally requires the admin role.
func registerRoutes(mux *http.ServeMux) {
	// Session endpoints
	mux.Handle("/api/login", http.HandlerFunc(handleLogin))
	mux.Handle("/api/logout", http.HandlerFunc(handleLogout))
	mux.Handle("/api/me", middleware.RequireAuth(http.HandlerFunc(handleMe)))

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}
	admin := middleware.RequireRole(user.RoleAdmin)

	// Directory of users, read-only for rota dropdowns and absence names
	mux.Handle("/api/users", authed(handleListUsers))

	// Duty rota
	mux.Handle("/api/duties", authed(handleListDuties))
	mux.Handle("/api/duties/mine", authed(handleMyDuties))
	mux.Handle("/api/duties/confirm", authed(handleConfirmDuty))
	mux.Handle("/api/duties/stats", authed(handleDutyStats))

	// Lessons and the combined rota feed
	mux.Handle("/api/lessons", authed(handleListLessons))
	mux.Handle("/api/lessons/mine", authed(handleMyLessons))
	mux.Handle("/api/lesson", authed(handleGetLesson))
	mux.Handle("/api/rota-feed", authed(handleRotaFeed))

	// Absences
	mux.Handle("/api/absences", authed(handleAbsences))
	mux.Handle("/api/absences/mine", authed(handleMyAbsences))
	mux.Handle("/api/absence", authed(handleAbsence))

	// Uniform store
	mux.Handle("/api/uniforms", authed(handleUniforms))

	// Assessments (read side open to all users)
	mux.Handle("/api/cohorts", authed(handleListCohorts))
	mux.Handle("/api/cohort/assessments", authed(handleCohortAssessments))
	mux.Handle("/api/cohort/print", authed(handlePrintView))
	mux.Handle("/api/cadets", authed(handleListCadets))

	// Admin: user management
	mux.Handle("/api/admin/users", admin(http.HandlerFunc(handleAdminUsers)))
	mux.Handle("/api/admin/users/delete", admin(http.HandlerFunc(handleAdminDeleteUser)))

	// Admin: duty rota mutations
	mux.Handle("/api/admin/duties", admin(http.HandlerFunc(handleAdminDuties)))

	// Admin: lessons, assignments, resources
	mux.Handle("/api/admin/lessons", admin(http.HandlerFunc(handleAdminLessons)))
	mux.Handle("/api/admin/lessons/assignments", admin(http.HandlerFunc(handleAdminLessonAssignments)))
	mux.Handle("/api/admin/lessons/resources", admin(http.HandlerFunc(handleAdminLessonResources)))

	// Admin: assessment engine
	mux.Handle("/api/admin/cohorts", admin(http.HandlerFunc(handleAdminCohorts)))
	mux.Handle("/api/admin/cohorts/cadets", admin(http.HandlerFunc(handleAdminAddCadet)))
	mux.Handle("/api/admin/assessments/criterion", admin(http.HandlerFunc(handleAdminSetCriterion)))
	mux.Handle("/api/admin/assessments/remove", admin(http.HandlerFunc(handleAdminRemoveAssessment)))
	mux.Handle("/api/admin/cohorts/export", admin(http.HandlerFunc(handleAdminExportResults)))

	// Admin: audit trail
	mux.Handle("/api/admin/audit", admin(http.HandlerFunc(handleAdminAuditTrail)))
}
