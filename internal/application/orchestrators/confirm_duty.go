package orchestrators

import (
	"context"
	"log/slog"

	"sqnportal/internal/apperr"
	"sqnportal/internal/domain/duty"
)

// ConfirmDutyInput carries input for attendance confirmation. Role selects
// which slot's status changes.
type ConfirmDutyInput struct {
	Date   string
	Role   string // "senior" or "junior"
	Status string // unconfirmed, attended, absent
}

// ConfirmDutyDeps holds dependencies for ConfirmDuty.
type ConfirmDutyDeps struct {
	DutyStore DutyStore
}

// ExecuteConfirmDuty records attendance for one duty slot. Statuses stay
// editable, so a mistaken confirmation can always be corrected.
// PRE: caller is an admin or the slot's actual assignee (enforced by the handler)
// POST: the slot status is updated, or an error and no change
func ExecuteConfirmDuty(ctx context.Context, input ConfirmDutyInput, deps ConfirmDutyDeps) (duty.Rota, error) {
	date, err := duty.NormalizeDate(input.Date)
	if err != nil {
		return duty.Rota{}, apperr.Validation(err)
	}

	r, err := deps.DutyStore.GetByDate(ctx, date)
	if err != nil {
		return duty.Rota{}, err
	}

	switch input.Role {
	case duty.RoleSenior:
		err = r.SetSeniorStatus(input.Status)
	case duty.RoleJunior:
		err = r.SetJuniorStatus(input.Status)
	default:
		return duty.Rota{}, apperr.New(apperr.KindValidation, "role must be senior or junior")
	}
	if err != nil {
		return duty.Rota{}, apperr.Validation(err)
	}

	if err := deps.DutyStore.Save(ctx, r); err != nil {
		return duty.Rota{}, err
	}

	slog.Info("duty_event", "event", "duty_confirmed", "date", date.Format(duty.DateFormat),
		"role", input.Role, "status", input.Status)
	return r, nil
}
