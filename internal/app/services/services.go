package services

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/parishscheduler/internal/app/repositories"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
)

// Services holds every domain service
type Services struct {
	Auth      *AuthService
	Member    *MemberService
	Ministry  *MinistryService
	Schedule  *ScheduleService
	Dashboard *DashboardService
	Report    *ReportService
}

// Dependencies are the collaborators shared by the services
type Dependencies struct {
	Transactor     repositories.Transactor
	Users          repositories.IUserRepository
	Ministries     repositories.IMinistryRepository
	Memberships    repositories.IMembershipRepository
	Schedules      repositories.IScheduleRepository
	Participations repositories.IParticipationRepository
	JWT            *auth.JWTService
	// SummaryCache and Notifier are optional
	SummaryCache SummaryCache
	SummaryTTL   time.Duration
	Notifier     ParticipationNotifier
}

// NewServices wires every service from deps
func NewServices(deps Dependencies, logger zerolog.Logger) *Services {
	dashboard := NewDashboardService(deps.Users, deps.Participations, deps.Memberships,
		logger.With().Str("service", "dashboard").Logger())
	if deps.SummaryCache != nil {
		dashboard.WithCache(deps.SummaryCache, deps.SummaryTTL)
	}

	schedule := NewScheduleService(deps.Transactor, deps.Schedules, deps.Participations, deps.Ministries,
		deps.Memberships, deps.Users, logger.With().Str("service", "schedule").Logger())
	if deps.Notifier != nil {
		schedule.WithNotifier(deps.Notifier)
	}

	return &Services{
		Auth: NewAuthService(deps.Users, deps.JWT, logger.With().Str("service", "auth").Logger()),
		Member: NewMemberService(deps.Transactor, deps.Users, deps.Ministries, deps.Memberships,
			logger.With().Str("service", "member").Logger()),
		Ministry: NewMinistryService(deps.Ministries, deps.Memberships,
			logger.With().Str("service", "ministry").Logger()),
		Schedule:  schedule,
		Dashboard: dashboard,
		Report:    NewReportService(deps.Participations, deps.Memberships, logger.With().Str("service", "report").Logger()),
	}
}

// uniqueIDs drops empty and repeated ids, keeping first occurrences in order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
