package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "sqnportal/internal/adapters/email"
	web "sqnportal/internal/adapters/http"
	"sqnportal/internal/adapters/storage"
	absenceStore "sqnportal/internal/adapters/storage/absence"
	assessmentStore "sqnportal/internal/adapters/storage/assessment"
	auditStore "sqnportal/internal/adapters/storage/audit"
	cadetStore "sqnportal/internal/adapters/storage/cadet"
	dutyStore "sqnportal/internal/adapters/storage/duty"
	lessonStore "sqnportal/internal/adapters/storage/lesson"
	uniformStore "sqnportal/internal/adapters/storage/uniform"
	userStore "sqnportal/internal/adapters/storage/user"
	"sqnportal/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("SQNPORTAL_DB", "sqnportal.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Wrap DB with slow-query instrumentation
	timedDB := storage.NewTimedDB(db)

	uStore := userStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		UserStore:       uStore,
		DutyStore:       dutyStore.NewSQLiteStore(timedDB),
		LessonStore:     lessonStore.NewSQLiteStore(timedDB),
		AbsenceStore:    absenceStore.NewSQLiteStore(timedDB),
		UniformStore:    uniformStore.NewSQLiteStore(timedDB),
		CadetStore:      cadetStore.NewSQLiteStore(timedDB),
		AssessmentStore: assessmentStore.NewSQLiteStore(timedDB),
		AuditStore:      auditStore.NewSQLiteStore(timedDB),
	}

	// Seed the bootstrap admin account when credentials are configured
	seedInput := orchestrators.SeedAdminInput{
		Username: os.Getenv("SQNPORTAL_ADMIN_USERNAME"),
		Password: os.Getenv("SQNPORTAL_ADMIN_PASSWORD"),
		FullName: os.Getenv("SQNPORTAL_ADMIN_NAME"),
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedInput, orchestrators.SeedAdminDeps{UserStore: uStore}); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender
	resendKey := os.Getenv("SQNPORTAL_RESEND_KEY")
	emailFrom := envOrDefault("SQNPORTAL_RESEND_FROM", "Squadron Portal <noreply@sqnportal.org.nz>")
	emailReply := envOrDefault("SQNPORTAL_REPLY_TO", "admin@sqnportal.org.nz")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("SQNPORTAL_ENV") == "production" {
			log.Println("WARNING: SQNPORTAL_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set SQNPORTAL_RESEND_KEY for real delivery)")
		}
	}
	web.SetDutyNotifyAddress(os.Getenv("SQNPORTAL_DUTY_NOTIFY"))

	// Create HTTP handler with middleware
	mux := web.NewMux("static", stores)

	// Start server
	addr := envOrDefault("SQNPORTAL_ADDR", ":8080")
	log.Printf("Squadron portal %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("SQNPORTAL_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
