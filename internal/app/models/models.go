package models

// Role is the closed set of parish roles
type Role string

const (
	RoleVolunteer   Role = "VOLUNTEER"
	RoleCoordinator Role = "COORDINATOR"
	RoleDirector    Role = "DIRECTOR"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleVolunteer, RoleCoordinator, RoleDirector:
		return true
	}
	return false
}

// IsManager reports whether r may manage schedules and members
func (r Role) IsManager() bool {
	return r == RoleDirector || r == RoleCoordinator
}

// UserStatus marks an account as usable or disabled
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Toggle returns the opposite status
func (s UserStatus) Toggle() UserStatus {
	if s == UserStatusActive {
		return UserStatusInactive
	}
	return UserStatusActive
}

// ParticipationStatus is the state of a volunteer's participation in a schedule
type ParticipationStatus string

const (
	ParticipationPending           ParticipationStatus = "PENDING"
	ParticipationConfirmed         ParticipationStatus = "CONFIRMED"
	ParticipationExchangeRequested ParticipationStatus = "EXCHANGE_REQUESTED"
)

// IsValid reports whether s is one of the known statuses
func (s ParticipationStatus) IsValid() bool {
	switch s {
	case ParticipationPending, ParticipationConfirmed, ParticipationExchangeRequested:
		return true
	}
	return false
}
