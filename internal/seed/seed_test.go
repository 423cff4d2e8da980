package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/mocks"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
)

func TestEnsureDirector(t *testing.T) {
	ctx := context.Background()
	users := mocks.NewStore().Users()
	director := Director{Name: "Father Paulo", Email: " Paulo@Parish.org ", Password: "secret123"}

	created, err := EnsureDirector(ctx, users, director, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, created)

	user, err := users.GetByEmail(ctx, "paulo@parish.org")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDirector, user.Role)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.True(t, auth.CheckPassword(user.Password, "secret123"))

	created, err = EnsureDirector(ctx, users, director, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureDirector_Invalid(t *testing.T) {
	users := mocks.NewStore().Users()

	_, err := EnsureDirector(context.Background(), users, Director{Email: "a@parish.org", Password: "123"}, zerolog.Nop())
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = EnsureDirector(context.Background(), users, Director{Password: "secret123"}, zerolog.Nop())
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
