package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// schemaVersion is bumped whenever the schema below changes shape.
const schemaVersion = 1

// LatestSchemaVersion returns the schema version this build expects.
// PRE: none
// POST: returns the current schema version constant
func LatestSchemaVersion() int {
	return schemaVersion
}

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled, user_version set
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables. Dates are stored as TEXT: duty/absence/lesson dates in
	// YYYY-MM-DD, timestamps in RFC 3339.
	schema := `
	CREATE TABLE IF NOT EXISTS user (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lesson (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		lesson_date TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (created_by) REFERENCES user(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS lesson_assignment (
		id TEXT PRIMARY KEY,
		lesson_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		UNIQUE (lesson_id, user_id),
		FOREIGN KEY (lesson_id) REFERENCES lesson(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES user(id)
	);

	CREATE TABLE IF NOT EXISTS lesson_resource (
		id TEXT PRIMARY KEY,
		lesson_id TEXT NOT NULL,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		uploaded_at TEXT NOT NULL,
		FOREIGN KEY (lesson_id) REFERENCES lesson(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS duty_rota (
		id TEXT PRIMARY KEY,
		duty_date TEXT NOT NULL UNIQUE,
		original_senior_id TEXT NOT NULL,
		original_junior_id TEXT NOT NULL,
		actual_senior_id TEXT NOT NULL,
		actual_junior_id TEXT NOT NULL,
		senior_status TEXT NOT NULL DEFAULT 'unconfirmed',
		junior_status TEXT NOT NULL DEFAULT 'unconfirmed',
		FOREIGN KEY (original_senior_id) REFERENCES user(id),
		FOREIGN KEY (original_junior_id) REFERENCES user(id),
		FOREIGN KEY (actual_senior_id) REFERENCES user(id),
		FOREIGN KEY (actual_junior_id) REFERENCES user(id)
	);

	CREATE TABLE IF NOT EXISTS absence (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES user(id)
	);

	CREATE TABLE IF NOT EXISTS uniform_item (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		size TEXT NOT NULL,
		condition TEXT NOT NULL,
		added_by_id TEXT,
		added_at TEXT NOT NULL,
		FOREIGN KEY (added_by_id) REFERENCES user(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS cadet (
		id TEXT PRIMARY KEY,
		serial TEXT,
		sqn TEXT NOT NULL,
		rank TEXT NOT NULL,
		full_name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assessment_cohort (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		instructor_name TEXT NOT NULL,
		instructor_sqn TEXT NOT NULL,
		assessor_name TEXT NOT NULL,
		assessor_sqn TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS radio_assessment (
		id TEXT PRIMARY KEY,
		cohort_id TEXT NOT NULL,
		cadet_id TEXT NOT NULL,
		first_class_logbook_completed TEXT NOT NULL DEFAULT 'pending',
		basic_cyber_security_video_watched TEXT NOT NULL DEFAULT 'pending',
		correct_use_of_both_full_callsigns TEXT NOT NULL DEFAULT 'pending',
		authenticate_requested TEXT NOT NULL DEFAULT 'pending',
		authenticate_answered_correctly TEXT NOT NULL DEFAULT 'pending',
		radio_check_requested TEXT NOT NULL DEFAULT 'pending',
		radio_check_answered_correctly TEXT NOT NULL DEFAULT 'pending',
		tactical_message_fully_answered TEXT NOT NULL DEFAULT 'pending',
		i_say_again_used_correctly TEXT NOT NULL DEFAULT 'pending',
		say_again_used TEXT NOT NULL DEFAULT 'pending',
		proword_knowledge_completed_ok TEXT NOT NULL DEFAULT 'pending',
		security_knowledge_completed_ok TEXT NOT NULL DEFAULT 'pending',
		general_operating_and_confidence TEXT NOT NULL DEFAULT 'pending',
		pass_fail INTEGER NOT NULL DEFAULT 0,
		UNIQUE (cohort_id, cadet_id),
		FOREIGN KEY (cohort_id) REFERENCES assessment_cohort(id) ON DELETE CASCADE,
		FOREIGN KEY (cadet_id) REFERENCES cadet(id)
	);

	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		actor_name TEXT NOT NULL DEFAULT '',
		actor_role TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}

// SchemaVersion returns the schema version recorded in the database.
// PRE: db is a valid database connection
// POST: returns 0 for a fresh database, the recorded version otherwise
func SchemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// IsUniqueViolation reports whether err is a SQLite unique-constraint
// failure. Stores use this to surface natural-key races (duty_date,
// username, lesson/user pairs) as conflicts rather than opaque errors.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
