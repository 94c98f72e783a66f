package orchestrators

import (
	"context"
	"log/slog"

	"sqnportal/internal/domain/audit"
)

// AuditRecorder persists audit events. Recording is best-effort: a failed
// write never fails the operation it describes.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// Actor identifies who performed an operation, taken from the session.
type Actor struct {
	ID       string
	FullName string
	Role     string
}

// recordAudit writes an audit event if a recorder is configured.
func recordAudit(ctx context.Context, rec AuditRecorder, event audit.Event) {
	if rec == nil {
		return
	}
	if err := rec.Save(ctx, event); err != nil {
		slog.Error("audit_write_failed", "error", err, "category", event.Category, "action", event.Action)
	}
}
