package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/parishscheduler/internal/app/models"
	appRepos "github.com/yigit/parishscheduler/internal/app/repositories"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
)

// Director describes the bootstrap account
type Director struct {
	Name     string
	Email    string
	Password string
}

// EnsureDirector creates the director account when no user owns its email.
// It reports whether an account was created; running it twice is a no-op.
func EnsureDirector(ctx context.Context, users appRepos.IUserRepository, director Director, lgr zerolog.Logger) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(director.Email))
	name := strings.TrimSpace(director.Name)
	if email == "" || director.Password == "" {
		return false, apperrors.NewValidationError("director email and password are required")
	}
	if len(director.Password) < 6 {
		return false, apperrors.NewValidationError("director password must be at least 6 characters")
	}
	if name == "" {
		name = "Director"
	}

	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		lgr.Info().Str("userID", existing.ID).Str("email", email).Msg("Director account already present")
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return false, fmt.Errorf("error looking up director: %w", err)
	}

	hashedPassword, err := auth.HashPassword(director.Password)
	if err != nil {
		return false, fmt.Errorf("error hashing password: %w", err)
	}

	user := &appModels.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     appModels.RoleDirector,
		Status:   appModels.UserStatusActive,
	}
	if err := users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("error creating director: %w", err)
	}

	lgr.Info().Str("userID", user.ID).Str("email", email).Msg("Director account created")
	return true, nil
}
