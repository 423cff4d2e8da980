package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/repositories"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
	"github.com/yigit/parishscheduler/internal/pkg/helpers"
)

// MaxRecurringOccurrences caps how many schedules one recurrence may create
const MaxRecurringOccurrences = 52

// ParticipationNotifier receives participation events after they are committed
type ParticipationNotifier interface {
	ParticipationChanged(event dto.ParticipationEvent)
}

// ScheduleService handles schedules and the participation state machine
type ScheduleService struct {
	tx                repositories.Transactor
	scheduleRepo      repositories.IScheduleRepository
	participationRepo repositories.IParticipationRepository
	ministryRepo      repositories.IMinistryRepository
	membershipRepo    repositories.IMembershipRepository
	userRepo          repositories.IUserRepository
	notifier          ParticipationNotifier
	logger            zerolog.Logger
	now               func() time.Time
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(
	tx repositories.Transactor,
	scheduleRepo repositories.IScheduleRepository,
	participationRepo repositories.IParticipationRepository,
	ministryRepo repositories.IMinistryRepository,
	membershipRepo repositories.IMembershipRepository,
	userRepo repositories.IUserRepository,
	logger zerolog.Logger,
) *ScheduleService {
	return &ScheduleService{
		tx:                tx,
		scheduleRepo:      scheduleRepo,
		participationRepo: participationRepo,
		ministryRepo:      ministryRepo,
		membershipRepo:    membershipRepo,
		userRepo:          userRepo,
		logger:            logger,
		now:               time.Now,
	}
}

// WithNotifier publishes participation events to n
func (s *ScheduleService) WithNotifier(n ParticipationNotifier) *ScheduleService {
	s.notifier = n
	return s
}

// WithClock replaces the clock used for confirmation timestamps
func (s *ScheduleService) WithClock(now func() time.Time) *ScheduleService {
	s.now = now
	return s
}

// ListManagement returns the schedules the actor manages, newest date first.
// Coordinators only see schedules of ministries they belong to.
func (s *ScheduleService) ListManagement(ctx context.Context, actor auth.Identity) ([]dto.ScheduleResponse, error) {
	filter, err := s.scheduleScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	details, err := s.scheduleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewScheduleResponses(details), nil
}

// Get returns one schedule within the actor's scope
func (s *ScheduleService) Get(ctx context.Context, actor auth.Identity, id string) (*dto.ScheduleResponse, error) {
	detail, err := s.scheduleRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkMinistryAccess(ctx, actor, detail.MinistryID); err != nil {
		return nil, err
	}
	response := dto.NewScheduleResponse(detail)
	return &response, nil
}

// Create stores a schedule and one PENDING participation per volunteer atomically
func (s *ScheduleService) Create(ctx context.Context, actor auth.Identity, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, volunteerIDs, err := s.prepare(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.insert(ctx, schedule, volunteerIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("scheduleID", schedule.ID).
		Str("ministryID", schedule.MinistryID).
		Int("volunteers", len(volunteerIDs)).
		Msg("Schedule created")

	return s.detail(ctx, schedule.ID)
}

// CreateRecurring creates one schedule per occurrence of the recurrence rule,
// starting on the requested date, all in one transaction.
func (s *ScheduleService) CreateRecurring(ctx context.Context, actor auth.Identity, req *dto.RecurringScheduleRequest) ([]dto.ScheduleResponse, error) {
	template, volunteerIDs, err := s.prepare(ctx, actor, &req.ScheduleRequest)
	if err != nil {
		return nil, err
	}

	dates, err := ExpandRecurrence(req.Recurrence, template.Date)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(dates))
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, date := range dates {
			schedule := *template
			schedule.ID = ""
			schedule.Date = date
			if err := s.insert(ctx, &schedule, volunteerIDs); err != nil {
				return err
			}
			ids = append(ids, schedule.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ministryID", template.MinistryID).
		Str("recurrence", req.Recurrence).
		Int("occurrences", len(ids)).
		Msg("Recurring schedules created")

	responses := make([]dto.ScheduleResponse, 0, len(ids))
	for _, id := range ids {
		response, err := s.detail(ctx, id)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *response)
	}
	return responses, nil
}

// ExpandRecurrence returns the UTC calendar days produced by an RRULE anchored on start
func ExpandRecurrence(rule string, start time.Time) ([]time.Time, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	option, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid recurrence: %v", err))
	}
	option.Dtstart = helpers.DateOf(start)

	r, err := rrule.NewRRule(*option)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid recurrence: %v", err))
	}

	dates := []time.Time{}
	next := r.Iterator()
	for {
		occurrence, ok := next()
		if !ok {
			break
		}
		if len(dates) == MaxRecurringOccurrences {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("recurrence produces more than %d occurrences", MaxRecurringOccurrences))
		}
		dates = append(dates, helpers.DateOf(occurrence))
	}
	if len(dates) == 0 {
		return nil, apperrors.NewValidationError("recurrence produces no occurrences")
	}
	return dates, nil
}

// Update rewrites the schedule fields and reconciles its volunteers:
// new volunteers get PENDING participations, dropped ones are removed and
// the rest keep their status.
func (s *ScheduleService) Update(ctx context.Context, actor auth.Identity, id string, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error) {
	existing, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkMinistryAccess(ctx, actor, existing.MinistryID); err != nil {
		return nil, err
	}

	schedule, volunteerIDs, err := s.prepare(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	schedule.ID = existing.ID
	schedule.CreatedByID = existing.CreatedByID

	var added, removed []string
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
			return err
		}

		current, err := s.participationRepo.VolunteerIDs(ctx, id)
		if err != nil {
			return err
		}
		added, removed = ReconcileVolunteers(current, volunteerIDs)

		if err := s.participationRepo.DeleteVolunteers(ctx, id, removed); err != nil {
			return err
		}
		return s.participationRepo.CreateMany(ctx, id, added)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("scheduleID", id).
		Strs("added", added).
		Strs("removed", removed).
		Msg("Schedule updated")

	return s.detail(ctx, id)
}

// ReconcileVolunteers computes toAdd = next - current and toRemove = current - next, keeping input order
func ReconcileVolunteers(current, next []string) (toAdd, toRemove []string) {
	inCurrent := make(map[string]bool, len(current))
	for _, id := range current {
		inCurrent[id] = true
	}
	inNext := make(map[string]bool, len(next))
	for _, id := range next {
		inNext[id] = true
	}

	toAdd = []string{}
	for _, id := range next {
		if !inCurrent[id] {
			toAdd = append(toAdd, id)
		}
	}
	toRemove = []string{}
	for _, id := range current {
		if !inNext[id] {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}

// Delete removes a schedule with its participations
func (s *ScheduleService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	existing, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkMinistryAccess(ctx, actor, existing.MinistryID); err != nil {
		return err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.participationRepo.DeleteBySchedule(ctx, id); err != nil {
			return err
		}
		return s.scheduleRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("scheduleID", id).Str("deletedBy", actor.UserID).Msg("Schedule deleted")
	return nil
}

// ListMine returns the actor's own participations in date order
func (s *ScheduleService) ListMine(ctx context.Context, actor auth.Identity) ([]dto.ParticipationResponse, error) {
	views, err := s.participationRepo.List(ctx, models.ParticipationFilter{VolunteerID: actor.UserID})
	if err != nil {
		return nil, err
	}
	return dto.NewParticipationResponses(views), nil
}

// ListAll returns every participation in date order
func (s *ScheduleService) ListAll(ctx context.Context) ([]dto.ParticipationResponse, error) {
	views, err := s.participationRepo.List(ctx, models.ParticipationFilter{})
	if err != nil {
		return nil, err
	}
	return dto.NewParticipationResponses(views), nil
}

// Confirm moves the actor's PENDING participation to CONFIRMED
func (s *ScheduleService) Confirm(ctx context.Context, actor auth.Identity, participationID string) (*dto.ParticipationStatusResponse, error) {
	confirmedAt := s.now().UTC()

	ok, err := s.participationRepo.TransitionFromPending(ctx, participationID, actor.UserID,
		models.ParticipationConfirmed, nil, &confirmedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionFailure(ctx, participationID, actor.UserID)
	}

	s.logger.Info().Str("participationID", participationID).Str("volunteerID", actor.UserID).Msg("Participation confirmed")
	s.publish(ctx, dto.EventParticipationConfirmed, participationID, actor.UserID, models.ParticipationConfirmed, nil, confirmedAt)

	return &dto.ParticipationStatusResponse{
		ID:          participationID,
		Status:      dto.StatusLabel(models.ParticipationConfirmed),
		ConfirmedAt: &confirmedAt,
	}, nil
}

// RequestChange moves the actor's PENDING participation to EXCHANGE_REQUESTED
func (s *ScheduleService) RequestChange(ctx context.Context, actor auth.Identity, participationID string, reason *string) (*dto.ParticipationStatusResponse, error) {
	var trimmed *string
	if reason != nil {
		if r := strings.TrimSpace(*reason); r != "" {
			trimmed = &r
		}
	}

	ok, err := s.participationRepo.TransitionFromPending(ctx, participationID, actor.UserID,
		models.ParticipationExchangeRequested, trimmed, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionFailure(ctx, participationID, actor.UserID)
	}

	s.logger.Info().Str("participationID", participationID).Str("volunteerID", actor.UserID).Msg("Participation change requested")
	s.publish(ctx, dto.EventParticipationChangeRequested, participationID, actor.UserID,
		models.ParticipationExchangeRequested, trimmed, s.now().UTC())

	return &dto.ParticipationStatusResponse{
		ID:           participationID,
		Status:       dto.StatusLabel(models.ParticipationExchangeRequested),
		ChangeReason: trimmed,
	}, nil
}

// publish resolves the ministry of a participation and hands the event to the notifier.
// Lookup failures are logged; the transition is already committed.
func (s *ScheduleService) publish(ctx context.Context, eventType, participationID, volunteerID string,
	status models.ParticipationStatus, reason *string, at time.Time) {
	if s.notifier == nil {
		return
	}

	participation, err := s.participationRepo.GetOwned(ctx, participationID, volunteerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("participationID", participationID).Msg("Participation event dropped")
		return
	}
	schedule, err := s.scheduleRepo.GetByID(ctx, participation.ScheduleID)
	if err != nil {
		s.logger.Warn().Err(err).Str("participationID", participationID).Msg("Participation event dropped")
		return
	}

	s.notifier.ParticipationChanged(dto.ParticipationEvent{
		Type:            eventType,
		ParticipationID: participationID,
		ScheduleID:      schedule.ID,
		MinistryID:      schedule.MinistryID,
		VolunteerID:     volunteerID,
		Status:          dto.StatusLabel(status),
		ChangeReason:    reason,
		Timestamp:       at,
	})
}

// transitionFailure re-reads a participation whose conditional write matched
// no row and reports why.
func (s *ScheduleService) transitionFailure(ctx context.Context, participationID, volunteerID string) error {
	participation, err := s.participationRepo.GetOwned(ctx, participationID, volunteerID)
	if err != nil {
		return err
	}

	switch participation.Status {
	case models.ParticipationConfirmed:
		return apperrors.ErrAlreadyConfirmed
	case models.ParticipationExchangeRequested:
		return apperrors.ErrChangeAlreadyRequested
	default:
		return apperrors.NewConflictError("participation changed concurrently, try again")
	}
}

// prepare validates a schedule request against the actor's scope and the existing volunteers
func (s *ScheduleService) prepare(ctx context.Context, actor auth.Identity, req *dto.ScheduleRequest) (*models.Schedule, []string, error) {
	scheduleType := strings.TrimSpace(req.Type)
	if scheduleType == "" {
		return nil, nil, apperrors.NewValidationError("type is required")
	}
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, nil, apperrors.NewValidationError("date must be formatted as YYYY-MM-DD")
	}
	clock, err := helpers.ParseClock(req.Time)
	if err != nil {
		return nil, nil, apperrors.NewValidationError("time must be formatted as HH:MM")
	}
	volunteerIDs := uniqueIDs(req.Volunteers)
	if len(volunteerIDs) == 0 {
		return nil, nil, apperrors.NewValidationError("at least one volunteer is required")
	}

	if _, err := s.ministryRepo.GetByID(ctx, req.MinistryID); err != nil {
		return nil, nil, err
	}
	if err := s.checkMinistryAccess(ctx, actor, req.MinistryID); err != nil {
		return nil, nil, err
	}

	count, err := s.userRepo.CountExisting(ctx, volunteerIDs)
	if err != nil {
		return nil, nil, err
	}
	if count != len(volunteerIDs) {
		return nil, nil, apperrors.NewBadRequestError("one or more volunteers do not exist")
	}

	var notes *string
	if req.Notes != nil {
		if n := strings.TrimSpace(*req.Notes); n != "" {
			notes = &n
		}
	}

	return &models.Schedule{
		Type:        scheduleType,
		Date:        date,
		Time:        clock,
		Notes:       notes,
		MinistryID:  req.MinistryID,
		CreatedByID: actor.UserID,
	}, volunteerIDs, nil
}

func (s *ScheduleService) insert(ctx context.Context, schedule *models.Schedule, volunteerIDs []string) error {
	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return err
	}
	return s.participationRepo.CreateMany(ctx, schedule.ID, volunteerIDs)
}

func (s *ScheduleService) detail(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	detail, err := s.scheduleRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	response := dto.NewScheduleResponse(detail)
	return &response, nil
}

// checkMinistryAccess allows directors everywhere and coordinators inside their own ministries
func (s *ScheduleService) checkMinistryAccess(ctx context.Context, actor auth.Identity, ministryID string) error {
	switch actor.Role {
	case models.RoleDirector:
		return nil
	case models.RoleCoordinator:
		member, err := s.membershipRepo.IsMember(ctx, actor.UserID, ministryID)
		if err != nil {
			return err
		}
		if !member {
			return apperrors.NewForbiddenError("you cannot manage schedules of this ministry")
		}
		return nil
	default:
		return apperrors.NewForbiddenError("access denied")
	}
}

func (s *ScheduleService) scheduleScope(ctx context.Context, actor auth.Identity) (models.ScheduleFilter, error) {
	switch actor.Role {
	case models.RoleDirector:
		return models.ScheduleFilter{}, nil
	case models.RoleCoordinator:
		ids, err := s.membershipRepo.MinistryIDsForUser(ctx, actor.UserID)
		if err != nil {
			return models.ScheduleFilter{}, err
		}
		return models.ScheduleFilter{RestrictMinistries: true, MinistryIDs: ids}, nil
	default:
		return models.ScheduleFilter{}, apperrors.NewForbiddenError("access denied")
	}
}
