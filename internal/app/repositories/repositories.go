package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/db"
)

// Transactor runs fn atomically. Repository calls made with the ctx passed to fn
// take part in the same transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IUserRepository persists users and their addresses
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetStatus(ctx context.Context, id string, status models.UserStatus) error
	Delete(ctx context.Context, id string) error
	ListByRoles(ctx context.Context, roles []models.Role) ([]*models.User, error)
	CheckUniqueness(ctx context.Context, email, cpf, rg, excludeID string) error
	CountExisting(ctx context.Context, ids []string) (int, error)
	CountByRoleAndStatus(ctx context.Context, role models.Role, status models.UserStatus) (int, error)
	SaveAddress(ctx context.Context, userID string, address *models.Address) error
}

// IMinistryRepository persists ministries
type IMinistryRepository interface {
	Create(ctx context.Context, ministry *models.Ministry) error
	GetByID(ctx context.Context, id string) (*models.Ministry, error)
	Update(ctx context.Context, ministry *models.Ministry) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Ministry, error)
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	CountExisting(ctx context.Context, ids []string) (int, error)
}

// IMembershipRepository persists the user to ministry links
type IMembershipRepository interface {
	ReplaceForUser(ctx context.Context, userID string, ministryIDs []string, isCoordinator bool) error
	ListByUsers(ctx context.Context, userIDs []string) (map[string][]models.MinistrySummary, error)
	MinistryIDsForUser(ctx context.Context, userID string) ([]string, error)
	IsMember(ctx context.Context, userID, ministryID string) (bool, error)
	CountByMinistry(ctx context.Context, ministryID string) (int, error)
}

// IScheduleRepository persists schedules
type IScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	GetDetail(ctx context.Context, id string) (*models.ScheduleDetail, error)
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ScheduleFilter) ([]*models.ScheduleDetail, error)
}

// IParticipationRepository persists volunteer participations
type IParticipationRepository interface {
	CreateMany(ctx context.Context, scheduleID string, volunteerIDs []string) error
	VolunteerIDs(ctx context.Context, scheduleID string) ([]string, error)
	DeleteVolunteers(ctx context.Context, scheduleID string, volunteerIDs []string) error
	DeleteBySchedule(ctx context.Context, scheduleID string) error
	// TransitionFromPending moves a PENDING participation owned by volunteerID to status.
	// It reports false when no row matched.
	TransitionFromPending(ctx context.Context, id, volunteerID string, to models.ParticipationStatus, reason *string, confirmedAt *time.Time) (bool, error)
	GetOwned(ctx context.Context, id, volunteerID string) (*models.Participation, error)
	List(ctx context.Context, filter models.ParticipationFilter) ([]*models.ParticipationView, error)
	Count(ctx context.Context, filter models.ParticipationFilter) (int, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Transactor              Transactor
	UserRepository          *UserRepository
	MinistryRepository      *MinistryRepository
	MembershipRepository    *MembershipRepository
	ScheduleRepository      *ScheduleRepository
	ParticipationRepository *ParticipationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Transactor:              database,
		UserRepository:          NewUserRepository(database),
		MinistryRepository:      NewMinistryRepository(database),
		MembershipRepository:    NewMembershipRepository(database),
		ScheduleRepository:      NewScheduleRepository(database),
		ParticipationRepository: NewParticipationRepository(database),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func roleStrings(roles []models.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
