package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sqnportal/internal/apperr"
	"sqnportal/internal/domain/user"
)

// SeedAdminStore defines the store interface needed by SeedAdmin.
type SeedAdminStore interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Save(ctx context.Context, u user.User) error
}

// SeedAdminInput carries the bootstrap admin credentials, usually from the
// environment.
type SeedAdminInput struct {
	Username string
	FullName string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	UserStore SeedAdminStore
}

// ExecuteSeedAdmin creates the bootstrap admin account if it does not exist.
// Safe to run on every startup.
// POST: an admin with the given username exists; an existing one is untouched
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) error {
	if input.Username == "" || input.Password == "" {
		slog.Info("seed_admin_skipped", "reason", "no credentials configured")
		return nil
	}

	_, err := deps.UserStore.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return err
	}

	u := user.User{
		ID:        uuid.New().String(),
		Username:  input.Username,
		FullName:  input.FullName,
		Role:      user.RoleAdmin,
		CreatedAt: time.Now(),
	}
	if u.FullName == "" {
		u.FullName = "Portal Administrator"
	}
	if err := u.SetPassword(input.Password); err != nil {
		return apperr.Validation(err)
	}
	if err := deps.UserStore.Save(ctx, u); err != nil {
		return err
	}

	slog.Info("seed_admin_created", "username", input.Username)
	return nil
}
