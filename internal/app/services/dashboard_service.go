package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/repositories"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
	"github.com/yigit/parishscheduler/internal/pkg/helpers"
)

// SummaryCache stores computed dashboard summaries
type SummaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardService computes the home page counters
type DashboardService struct {
	userRepo          repositories.IUserRepository
	participationRepo repositories.IParticipationRepository
	membershipRepo    repositories.IMembershipRepository
	cache             SummaryCache
	cacheTTL          time.Duration
	logger            zerolog.Logger
	now               func() time.Time
}

// NewDashboardService creates a new DashboardService without cache
func NewDashboardService(
	userRepo repositories.IUserRepository,
	participationRepo repositories.IParticipationRepository,
	membershipRepo repositories.IMembershipRepository,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		userRepo:          userRepo,
		participationRepo: participationRepo,
		membershipRepo:    membershipRepo,
		logger:            logger,
		now:               time.Now,
	}
}

// WithCache enables caching of summaries for ttl
func (s *DashboardService) WithCache(cache SummaryCache, ttl time.Duration) *DashboardService {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// WithClock replaces the clock that decides what "today" is
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Summary returns the counters for the actor's role. "Today" is the UTC calendar day.
func (s *DashboardService) Summary(ctx context.Context, actor auth.Identity) (*dto.DashboardSummary, error) {
	today := helpers.DateOf(s.now())
	key := "dashboard:summary:" + actor.UserID + ":" + helpers.FormatDate(today)

	if s.cache != nil {
		var cached dto.DashboardSummary
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Dashboard cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	var summary *dto.DashboardSummary
	var err error
	if actor.Role.IsManager() {
		summary, err = s.managerSummary(ctx, actor, today)
	} else {
		summary, err = s.volunteerSummary(ctx, actor, today)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Dashboard cache write failed")
		}
	}
	return summary, nil
}

func (s *DashboardService) managerSummary(ctx context.Context, actor auth.Identity, today time.Time) (*dto.DashboardSummary, error) {
	scope := models.ParticipationFilter{}
	if actor.Role == models.RoleCoordinator {
		ids, err := s.membershipRepo.MinistryIDsForUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		scope.RestrictMinistries = true
		scope.MinistryIDs = ids
	}

	activeVolunteers, err := s.userRepo.CountByRoleAndStatus(ctx, models.RoleVolunteer, models.UserStatusActive)
	if err != nil {
		return nil, err
	}

	pendingFilter := scope
	pendingFilter.Status = models.ParticipationPending
	pending, err := s.participationRepo.Count(ctx, pendingFilter)
	if err != nil {
		return nil, err
	}

	tomorrow := today.AddDate(0, 0, 1)
	confirmedFilter := scope
	confirmedFilter.Status = models.ParticipationConfirmed
	confirmedFilter.ConfirmedFrom = &today
	confirmedFilter.ConfirmedTo = &tomorrow
	confirmations, err := s.participationRepo.Count(ctx, confirmedFilter)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardSummary{
		ActiveVolunteers:   &activeVolunteers,
		PendingSchedules:   &pending,
		ConfirmationsToday: &confirmations,
	}, nil
}

func (s *DashboardService) volunteerSummary(ctx context.Context, actor auth.Identity, today time.Time) (*dto.DashboardSummary, error) {
	upcoming, err := s.participationRepo.Count(ctx, models.ParticipationFilter{
		VolunteerID: actor.UserID,
		DateFrom:    &today,
	})
	if err != nil {
		return nil, err
	}

	pending, err := s.participationRepo.Count(ctx, models.ParticipationFilter{
		VolunteerID: actor.UserID,
		Status:      models.ParticipationPending,
	})
	if err != nil {
		return nil, err
	}

	return &dto.DashboardSummary{
		UpcomingSchedules:   &upcoming,
		PendingConfirmation: &pending,
	}, nil
}
