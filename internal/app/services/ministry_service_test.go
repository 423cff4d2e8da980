package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
)

func liturgyRequest() *dto.MinistryRequest {
	return &dto.MinistryRequest{Name: "Liturgy", Description: "Readers and altar servers", Color: "#aa3300"}
}

func TestMinistryCreate_DuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.services.Ministry.Create(ctx, liturgyRequest())
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, "Liturgy", created.Name)

	_, err = f.services.Ministry.Create(ctx, &dto.MinistryRequest{Name: "  Liturgy ", Description: "Another description here"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "a ministry with this name already exists", apperrors.PublicMessage(err, ""))

	list, err := f.services.Ministry.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMinistryUpdate_RenameToExistingName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Ministry.Create(ctx, liturgyRequest())
	require.NoError(t, err)
	music, err := f.services.Ministry.Create(ctx, &dto.MinistryRequest{Name: "Music", Description: "Choir and musicians"})
	require.NoError(t, err)

	_, err = f.services.Ministry.Update(ctx, music.ID, liturgyRequest())
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Keeping its own name is not a conflict
	updated, err := f.services.Ministry.Update(ctx, music.ID, &dto.MinistryRequest{Name: "Music", Description: "Choir, organ and musicians"})
	require.NoError(t, err)
	assert.Equal(t, "Choir, organ and musicians", updated.Description)
}

func TestMinistryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.MinistryRequest
	}{
		{"short name", dto.MinistryRequest{Name: " L ", Description: "Readers and altar servers"}},
		{"short description", dto.MinistryRequest{Name: "Liturgy", Description: "  Readers "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Ministry.Create(ctx, &tt.req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestMinistryToggleStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.ministry(t, "Liturgy")

	toggled, err := f.services.Ministry.ToggleStatus(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	toggled, err = f.services.Ministry.ToggleStatus(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestMinistryDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	liturgy := f.ministry(t, "Liturgy")
	music := f.ministry(t, "Music")
	f.join(t, f.user(t, "Bia Volunteer", models.RoleVolunteer), liturgy)

	err := f.services.Ministry.Delete(ctx, liturgy.ID)
	assert.ErrorIs(t, err, apperrors.ErrReferentialIntegrity)

	require.NoError(t, f.services.Ministry.Delete(ctx, music.ID))
	_, err = f.services.Ministry.Get(ctx, music.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	err = f.services.Ministry.Delete(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestMinistryList_CountsMembersInCreationOrder(t *testing.T) {
	f := newFixture(t)
	liturgy := f.ministry(t, "Liturgy")
	music := f.ministry(t, "Music")
	f.join(t, f.user(t, "Bia Volunteer", models.RoleVolunteer), liturgy, music)
	f.join(t, f.user(t, "Caio Volunteer", models.RoleVolunteer), liturgy)

	list, err := f.services.Ministry.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Liturgy", list[0].Name)
	assert.Equal(t, 2, list[0].MembersCount)
	assert.Equal(t, 1, list[1].MembersCount)
}
