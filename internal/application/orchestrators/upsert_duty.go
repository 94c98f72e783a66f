package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sqnportal/internal/adapters/email"
	"sqnportal/internal/apperr"
	"sqnportal/internal/domain/audit"
	"sqnportal/internal/domain/duty"
	"sqnportal/internal/domain/user"
)

// DutyStore defines the store interface needed by the duty orchestrators.
type DutyStore interface {
	Save(ctx context.Context, r duty.Rota) error
	GetByDate(ctx context.Context, date time.Time) (duty.Rota, error)
	DeleteByDate(ctx context.Context, date time.Time) error
}

// UserLookupStore resolves user IDs for validation and display names.
type UserLookupStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// UpsertDutyInput carries input for the duty upsert orchestrator. Date may be
// a plain YYYY-MM-DD string or an RFC 3339 timestamp.
type UpsertDutyInput struct {
	Date     string
	SeniorID string
	JuniorID string
}

// UpsertDutyDeps holds dependencies for UpsertDuty.
type UpsertDutyDeps struct {
	DutyStore DutyStore
	UserStore UserLookupStore
	Audit     AuditRecorder

	// Notify, when set, emails the squadron address after each change.
	Notify        email.Sender
	NotifyAddress string
}

// ExecuteUpsertDuty creates or replaces the duty assignment for a date.
// A first assignment records the pair as both original and actual; a
// reassignment only moves the actual pair and resets that role's status.
// PRE: caller is an admin (enforced by middleware)
// POST: exactly one rota row exists for the date; notification sent best-effort
func ExecuteUpsertDuty(ctx context.Context, actor Actor, input UpsertDutyInput, deps UpsertDutyDeps) (duty.Rota, error) {
	date, err := duty.NormalizeDate(input.Date)
	if err != nil {
		return duty.Rota{}, apperr.Validation(err)
	}

	// Both assignees must exist before anything is written.
	senior, err := deps.UserStore.GetByID(ctx, input.SeniorID)
	if err != nil {
		return duty.Rota{}, apperr.New(apperr.KindValidation, "duty senior does not exist")
	}
	junior, err := deps.UserStore.GetByID(ctx, input.JuniorID)
	if err != nil {
		return duty.Rota{}, apperr.New(apperr.KindValidation, "duty junior does not exist")
	}

	existing, err := deps.DutyStore.GetByDate(ctx, date)
	var r duty.Rota
	var action audit.Action
	switch {
	case err == nil:
		r = existing
		if input.SeniorID != r.ActualSeniorID {
			r.SeniorStatus = duty.StatusUnconfirmed
		}
		if input.JuniorID != r.ActualJuniorID {
			r.JuniorStatus = duty.StatusUnconfirmed
		}
		if err := r.Reassign(input.SeniorID, input.JuniorID); err != nil {
			return duty.Rota{}, apperr.Validation(err)
		}
		action = audit.ActionUpdate
	case apperr.KindOf(err) == apperr.KindNotFound:
		r = duty.New(date, input.SeniorID, input.JuniorID)
		r.ID = uuid.New().String()
		action = audit.ActionCreate
	default:
		return duty.Rota{}, err
	}

	if err := r.Validate(); err != nil {
		return duty.Rota{}, apperr.Validation(err)
	}
	if err := deps.DutyStore.Save(ctx, r); err != nil {
		return duty.Rota{}, err
	}

	dateStr := date.Format(duty.DateFormat)
	slog.Info("duty_event", "event", "duty_upserted", "date", dateStr,
		"senior_id", r.ActualSeniorID, "junior_id", r.ActualJuniorID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(actor.ID, actor.FullName, actor.Role, audit.CategoryDuty, action).
		WithResource("duty", r.ID).
		WithDescription(fmt.Sprintf("duty %s: senior %s, junior %s", dateStr, senior.FullName, junior.FullName)))

	notifyDutyChange(ctx, deps, dateStr, senior, junior)

	return r, nil
}

// DeleteDutyInput carries input for duty deletion.
type DeleteDutyInput struct {
	Date string
}

// ExecuteDeleteDuty removes the duty assignment for a date.
// PRE: caller is an admin (enforced by middleware)
// POST: no rota row exists for the date; missing row is a not-found error
func ExecuteDeleteDuty(ctx context.Context, actor Actor, input DeleteDutyInput, deps UpsertDutyDeps) error {
	date, err := duty.NormalizeDate(input.Date)
	if err != nil {
		return apperr.Validation(err)
	}
	if err := deps.DutyStore.DeleteByDate(ctx, date); err != nil {
		return err
	}

	dateStr := date.Format(duty.DateFormat)
	slog.Info("duty_event", "event", "duty_deleted", "date", dateStr)
	recordAudit(ctx, deps.Audit, audit.NewEvent(actor.ID, actor.FullName, actor.Role, audit.CategoryDuty, audit.ActionDelete).
		WithResource("duty", dateStr).
		WithDescription("cleared duty on "+dateStr))
	return nil
}

// notifyDutyChange sends a best-effort email to the squadron address. Portal
// users carry no email address, so notifications fan out through the one
// configured inbox.
func notifyDutyChange(ctx context.Context, deps UpsertDutyDeps, dateStr string, senior, junior user.User) {
	if deps.Notify == nil || deps.NotifyAddress == "" {
		return
	}
	req := email.SendRequest{
		To:      []string{deps.NotifyAddress},
		Subject: "Duty rota updated for " + dateStr,
		HTML: fmt.Sprintf("<p>The duty assignment for <strong>%s</strong> has changed.</p><ul><li>Duty senior: %s</li><li>Duty junior: %s</li></ul>",
			dateStr, senior.FullName, junior.FullName),
	}
	if _, err := deps.Notify.Send(ctx, req); err != nil {
		slog.Error("duty_notify_failed", "error", err, "date", dateStr)
	}
}
