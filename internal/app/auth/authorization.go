package auth

import (
	"fmt"

	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/parishscheduler/internal/pkg/auth"
)

// Action names a guarded operation
type Action string

const (
	ActionMemberManage         Action = "member.manage"
	ActionMinistryRead         Action = "ministry.read"
	ActionMinistryWrite        Action = "ministry.write"
	ActionScheduleManage       Action = "schedule.manage"
	ActionScheduleViewAll      Action = "schedule.view_all"
	ActionScheduleViewOwn      Action = "schedule.view_own"
	ActionParticipationRespond Action = "participation.respond"
	ActionDashboardView        Action = "dashboard.view"
	ActionReportView           Action = "report.view"
)

var everyone = []models.Role{models.RoleDirector, models.RoleCoordinator, models.RoleVolunteer}
var managers = []models.Role{models.RoleDirector, models.RoleCoordinator}

// permissions is the single source of truth for which roles may run which action
var permissions = map[Action][]models.Role{
	ActionMemberManage:         managers,
	ActionMinistryRead:         managers,
	ActionMinistryWrite:        {models.RoleDirector},
	ActionScheduleManage:       managers,
	ActionScheduleViewAll:      everyone,
	ActionScheduleViewOwn:      everyone,
	ActionParticipationRespond: everyone,
	ActionDashboardView:        everyone,
	ActionReportView:           managers,
}

// RolesFor returns the allow-list of an action. Unknown actions allow nobody.
func RolesFor(action Action) []models.Role {
	roles := permissions[action]
	out := make([]models.Role, len(roles))
	copy(out, roles)
	return out
}

// Allowed reports whether role may perform action
func Allowed(action Action, role models.Role) bool {
	return roleIn(role, permissions[action])
}

// CheckRoles is the pure authorization decision: nil identity is unauthenticated,
// a role outside the allow-list is denied.
func CheckRoles(identity *pkgAuth.Identity, allowed []models.Role) error {
	if identity == nil || identity.UserID == "" {
		return apperrors.ErrUnauthenticated
	}
	if !roleIn(identity.Role, allowed) {
		return fmt.Errorf("%w: access denied", apperrors.ErrPermissionDenied)
	}
	return nil
}

// creatableRoles lists which member roles each role may assign
var creatableRoles = map[models.Role][]models.Role{
	models.RoleDirector:    {models.RoleCoordinator, models.RoleVolunteer},
	models.RoleCoordinator: {models.RoleVolunteer},
}

// CanAssignRole reports whether actor may create or edit a member to hold target
func CanAssignRole(actor, target models.Role) bool {
	return roleIn(target, creatableRoles[actor])
}

// CanManageMember decides whether actor may edit, toggle or delete a member holding target.
// Directors are never manageable; coordinators only manage volunteers.
func CanManageMember(actor, target models.Role) error {
	if target == models.RoleDirector {
		return apperrors.NewForbiddenError("director accounts cannot be modified")
	}
	if actor == models.RoleCoordinator && target != models.RoleVolunteer {
		return apperrors.NewForbiddenError("coordinators can only manage volunteers")
	}
	if !actor.IsManager() {
		return apperrors.NewForbiddenError("access denied")
	}
	return nil
}

// VisibleMemberRoles returns the member roles a manager may list
func VisibleMemberRoles(actor models.Role) []models.Role {
	switch actor {
	case models.RoleDirector:
		return []models.Role{models.RoleCoordinator, models.RoleVolunteer}
	case models.RoleCoordinator:
		return []models.Role{models.RoleVolunteer}
	default:
		return nil
	}
}

func roleIn(role models.Role, roles []models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
