package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/parishscheduler/internal/pkg/auth"
)

func TestPermissionTable(t *testing.T) {
	tests := []struct {
		action Action
		role   models.Role
		want   bool
	}{
		{ActionMinistryWrite, models.RoleDirector, true},
		{ActionMinistryWrite, models.RoleCoordinator, false},
		{ActionMinistryWrite, models.RoleVolunteer, false},
		{ActionMinistryRead, models.RoleCoordinator, true},
		{ActionMinistryRead, models.RoleVolunteer, false},
		{ActionMemberManage, models.RoleVolunteer, false},
		{ActionScheduleManage, models.RoleCoordinator, true},
		{ActionScheduleViewOwn, models.RoleVolunteer, true},
		{ActionParticipationRespond, models.RoleVolunteer, true},
		{ActionReportView, models.RoleVolunteer, false},
		{Action("unknown"), models.RoleDirector, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.action, tt.role))
		})
	}
}

func TestRolesForReturnsCopy(t *testing.T) {
	roles := RolesFor(ActionMinistryWrite)
	roles[0] = models.RoleVolunteer

	assert.False(t, Allowed(ActionMinistryWrite, models.RoleVolunteer))
}

func TestCheckRoles(t *testing.T) {
	assert.ErrorIs(t, CheckRoles(nil, managers), apperrors.ErrUnauthenticated)

	volunteer := &pkgAuth.Identity{UserID: "v1", Role: models.RoleVolunteer}
	assert.ErrorIs(t, CheckRoles(volunteer, managers), apperrors.ErrPermissionDenied)

	director := &pkgAuth.Identity{UserID: "d1", Role: models.RoleDirector}
	assert.NoError(t, CheckRoles(director, managers))
}

func TestCanAssignRole(t *testing.T) {
	assert.True(t, CanAssignRole(models.RoleDirector, models.RoleCoordinator))
	assert.True(t, CanAssignRole(models.RoleDirector, models.RoleVolunteer))
	assert.False(t, CanAssignRole(models.RoleDirector, models.RoleDirector))
	assert.True(t, CanAssignRole(models.RoleCoordinator, models.RoleVolunteer))
	assert.False(t, CanAssignRole(models.RoleCoordinator, models.RoleDirector))
	assert.False(t, CanAssignRole(models.RoleVolunteer, models.RoleVolunteer))
}

func TestCanManageMember(t *testing.T) {
	assert.ErrorIs(t, CanManageMember(models.RoleDirector, models.RoleDirector), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, CanManageMember(models.RoleCoordinator, models.RoleDirector), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, CanManageMember(models.RoleCoordinator, models.RoleCoordinator), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, CanManageMember(models.RoleVolunteer, models.RoleVolunteer), apperrors.ErrPermissionDenied)
	assert.NoError(t, CanManageMember(models.RoleCoordinator, models.RoleVolunteer))
	assert.NoError(t, CanManageMember(models.RoleDirector, models.RoleCoordinator))
}
