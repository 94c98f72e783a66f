package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sqnportal/internal/apperr"
	"sqnportal/internal/domain/audit"
	"sqnportal/internal/domain/user"
)

// UserStore defines the store interface needed by the user orchestrators.
type UserStore interface {
	Save(ctx context.Context, u user.User) error
	GetByID(ctx context.Context, id string) (user.User, error)
	DeleteCascade(ctx context.Context, id string) error
}

// CreateUserInput carries input for user creation.
type CreateUserInput struct {
	Username string
	FullName string
	Password string
	Role     string
}

// CreateUserDeps holds dependencies for CreateUser.
type CreateUserDeps struct {
	UserStore UserStore
	Audit     AuditRecorder
}

// ExecuteCreateUser creates a portal user with a hashed password.
// PRE: caller is an admin (enforced by middleware)
// POST: user persisted with bcrypt password hash; audit event recorded
func ExecuteCreateUser(ctx context.Context, actor Actor, input CreateUserInput, deps CreateUserDeps) (user.User, error) {
	u := user.User{
		ID:        uuid.New().String(),
		Username:  strings.TrimSpace(input.Username),
		FullName:  strings.TrimSpace(input.FullName),
		Role:      input.Role,
		CreatedAt: time.Now(),
	}
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	if err := u.SetPassword(input.Password); err != nil {
		return user.User{}, apperr.Validation(err)
	}
	if err := u.Validate(); err != nil {
		return user.User{}, apperr.Validation(err)
	}
	if err := deps.UserStore.Save(ctx, u); err != nil {
		return user.User{}, err
	}

	slog.Info("user_event", "event", "user_created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	recordAudit(ctx, deps.Audit, audit.NewEvent(actor.ID, actor.FullName, actor.Role, audit.CategoryUser, audit.ActionCreate).
		WithResource("user", u.ID).
		WithDescription("created user "+u.Username))

	return u, nil
}

// UpdateUserInput carries input for user updates. Password is optional; when
// empty the existing hash is kept.
type UpdateUserInput struct {
	UserID   string
	Username string
	FullName string
	Password string
	Role     string
}

// ExecuteUpdateUser updates an existing user's details.
// PRE: caller is an admin (enforced by middleware)
// POST: user persisted; audit event recorded
func ExecuteUpdateUser(ctx context.Context, actor Actor, input UpdateUserInput, deps CreateUserDeps) (user.User, error) {
	u, err := deps.UserStore.GetByID(ctx, input.UserID)
	if err != nil {
		return user.User{}, err
	}

	u.Username = strings.TrimSpace(input.Username)
	u.FullName = strings.TrimSpace(input.FullName)
	if input.Role != "" {
		u.Role = input.Role
	}
	if input.Password != "" {
		if err := u.SetPassword(input.Password); err != nil {
			return user.User{}, apperr.Validation(err)
		}
	}
	if err := u.Validate(); err != nil {
		return user.User{}, apperr.Validation(err)
	}
	if err := deps.UserStore.Save(ctx, u); err != nil {
		return user.User{}, err
	}

	slog.Info("user_event", "event", "user_updated", "user_id", u.ID, "username", u.Username)
	recordAudit(ctx, deps.Audit, audit.NewEvent(actor.ID, actor.FullName, actor.Role, audit.CategoryUser, audit.ActionUpdate).
		WithResource("user", u.ID).
		WithDescription("updated user "+u.Username))

	return u, nil
}

// DeleteUserInput carries input for user deletion.
type DeleteUserInput struct {
	UserID string
}

// DeleteUserDeps holds dependencies for DeleteUser.
type DeleteUserDeps struct {
	UserStore UserStore
	Audit     AuditRecorder
}

// ExecuteDeleteUser removes a user and everything that references them.
// Admins cannot delete their own account, so the squadron can never lock
// itself out.
// PRE: caller is an admin (enforced by middleware)
// POST: user and dependent rows deleted atomically; audit event recorded
func ExecuteDeleteUser(ctx context.Context, actor Actor, input DeleteUserInput, deps DeleteUserDeps) error {
	if input.UserID == "" {
		return apperr.New(apperr.KindValidation, "user ID is required")
	}
	if input.UserID == actor.ID {
		return apperr.New(apperr.KindValidation, "you cannot delete your own account")
	}

	target, err := deps.UserStore.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if err := deps.UserStore.DeleteCascade(ctx, input.UserID); err != nil {
		return err
	}

	slog.Info("user_event", "event", "user_deleted", "user_id", input.UserID, "username", target.Username)
	recordAudit(ctx, deps.Audit, audit.NewEvent(actor.ID, actor.FullName, actor.Role, audit.CategoryUser, audit.ActionDelete).
		WithResource("user", input.UserID).
		WithDescription("deleted user "+target.Username))

	return nil
}
