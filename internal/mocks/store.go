// Package mocks provides in-memory implementations of the repository
// interfaces for tests.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/repositories"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
)

// Store is an in-memory database shared by the mock repositories.
// WithTransaction snapshots the whole store and restores it when fn fails.
type Store struct {
	mu sync.Mutex

	users          map[string]models.User
	ministries     map[string]models.Ministry
	memberships    map[string]map[string]models.MinistryMember
	schedules      map[string]models.Schedule
	participations map[string]models.Participation

	failures map[string]error
	tick     time.Time

	Transactions int
	Rollbacks    int
}

var (
	_ repositories.Transactor               = (*Store)(nil)
	_ repositories.IUserRepository          = (*UserRepo)(nil)
	_ repositories.IMinistryRepository      = (*MinistryRepo)(nil)
	_ repositories.IMembershipRepository    = (*MembershipRepo)(nil)
	_ repositories.IScheduleRepository      = (*ScheduleRepo)(nil)
	_ repositories.IParticipationRepository = (*ParticipationRepo)(nil)
)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:          map[string]models.User{},
		ministries:     map[string]models.Ministry{},
		memberships:    map[string]map[string]models.MinistryMember{},
		schedules:      map[string]models.Schedule{},
		participations: map[string]models.Participation{},
		failures:       map[string]error{},
		tick:           time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Fail makes the named operation (e.g. "Memberships.ReplaceForUser") return err until cleared with nil
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

// next returns strictly increasing creation timestamps
func (s *Store) next() time.Time {
	s.tick = s.tick.Add(time.Millisecond)
	return s.tick
}

// Users returns the user repository view of the store
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Ministries returns the ministry repository view of the store
func (s *Store) Ministries() *MinistryRepo { return &MinistryRepo{s: s} }

// Memberships returns the membership repository view of the store
func (s *Store) Memberships() *MembershipRepo { return &MembershipRepo{s: s} }

// Schedules returns the schedule repository view of the store
func (s *Store) Schedules() *ScheduleRepo { return &ScheduleRepo{s: s} }

// Participations returns the participation repository view of the store
func (s *Store) Participations() *ParticipationRepo { return &ParticipationRepo{s: s} }

type snapshot struct {
	users          map[string]models.User
	ministries     map[string]models.Ministry
	memberships    map[string]map[string]models.MinistryMember
	schedules      map[string]models.Schedule
	participations map[string]models.Participation
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		users:          make(map[string]models.User, len(s.users)),
		ministries:     make(map[string]models.Ministry, len(s.ministries)),
		memberships:    make(map[string]map[string]models.MinistryMember, len(s.memberships)),
		schedules:      make(map[string]models.Schedule, len(s.schedules)),
		participations: make(map[string]models.Participation, len(s.participations)),
	}
	for k, v := range s.users {
		snap.users[k] = copyUser(v)
	}
	for k, v := range s.ministries {
		snap.ministries[k] = v
	}
	for k, set := range s.memberships {
		inner := make(map[string]models.MinistryMember, len(set))
		for mk, mv := range set {
			inner[mk] = mv
		}
		snap.memberships[k] = inner
	}
	for k, v := range s.schedules {
		snap.schedules[k] = v
	}
	for k, v := range s.participations {
		snap.participations[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.ministries = snap.ministries
	s.memberships = snap.memberships
	s.schedules = snap.schedules
	s.participations = snap.participations
}

// WithTransaction runs fn and restores the pre-call state if it fails
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.Transactions++
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.Rollbacks++
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

func copyUser(u models.User) models.User {
	if u.Address != nil {
		addr := *u.Address
		u.Address = &addr
	}
	u.Ministries = nil
	return u
}

// UserRepo implements repositories.IUserRepository
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Users.Create"); err != nil {
		return err
	}
	if err := r.s.uniqueness(user.Email, user.CPF, user.RG, user.ID); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	user.CreatedAt = r.s.next()
	user.UpdatedAt = user.CreatedAt
	stored := copyUser(*user)
	stored.Address = nil
	r.s.users[user.ID] = stored
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	out := copyUser(u)
	return &out, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Users.Update"); err != nil {
		return err
	}
	existing, ok := r.s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if err := r.s.uniqueness(user.Email, user.CPF, user.RG, user.ID); err != nil {
		return err
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.Password = user.Password
	existing.Phone = user.Phone
	existing.CPF = user.CPF
	existing.RG = user.RG
	existing.Role = user.Role
	existing.UpdatedAt = r.s.next()
	user.UpdatedAt = existing.UpdatedAt
	r.s.users[user.ID] = existing
	return nil
}

func (r *UserRepo) SetStatus(ctx context.Context, id string, status models.UserStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Status = status
	r.s.users[id] = u
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	for _, sch := range r.s.schedules {
		if sch.CreatedByID == id {
			return apperrors.NewReferentialIntegrityError("cannot delete: linked to schedules or other activity")
		}
	}
	for _, p := range r.s.participations {
		if p.VolunteerID == id {
			return apperrors.NewReferentialIntegrityError("cannot delete: linked to schedules or other activity")
		}
	}
	delete(r.s.users, id)
	delete(r.s.memberships, id)
	return nil
}

func (r *UserRepo) ListByRoles(ctx context.Context, roles []models.Role) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	allowed := map[models.Role]bool{}
	for _, role := range roles {
		allowed[role] = true
	}
	users := []*models.User{}
	for _, u := range r.s.users {
		if allowed[u.Role] {
			out := copyUser(u)
			users = append(users, &out)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *UserRepo) CheckUniqueness(ctx context.Context, email, cpf, rg, excludeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.uniqueness(email, cpf, rg, excludeID)
}

func (s *Store) uniqueness(email, cpf, rg, excludeID string) error {
	for id, u := range s.users {
		if id == excludeID {
			continue
		}
		switch {
		case u.Email == email:
			return apperrors.ErrEmailAlreadyExists
		case cpf != "" && u.CPF == cpf:
			return apperrors.ErrCPFAlreadyExists
		case rg != "" && u.RG == rg:
			return apperrors.ErrRGAlreadyExists
		}
	}
	return nil
}

func (r *UserRepo) CountExisting(ctx context.Context, ids []string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, id := range ids {
		if _, ok := r.s.users[id]; ok {
			count++
		}
	}
	return count, nil
}

func (r *UserRepo) CountByRoleAndStatus(ctx context.Context, role models.Role, status models.UserStatus) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, u := range r.s.users {
		if u.Role == role && u.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *UserRepo) SaveAddress(ctx context.Context, userID string, address *models.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Users.SaveAddress"); err != nil {
		return err
	}
	u, ok := r.s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	addr := *address
	addr.UserID = userID
	u.Address = &addr
	r.s.users[userID] = u
	address.UserID = userID
	return nil
}

// MinistryRepo implements repositories.IMinistryRepository
type MinistryRepo struct{ s *Store }

func (r *MinistryRepo) Create(ctx context.Context, ministry *models.Ministry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.ministries {
		if m.Name == ministry.Name {
			return apperrors.ErrMinistryNameExists
		}
	}
	if ministry.ID == "" {
		ministry.ID = uuid.NewString()
	}
	ministry.CreatedAt = r.s.next()
	stored := *ministry
	stored.MembersCount = 0
	r.s.ministries[ministry.ID] = stored
	return nil
}

func (r *MinistryRepo) GetByID(ctx context.Context, id string) (*models.Ministry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.ministries[id]
	if !ok {
		return nil, apperrors.ErrMinistryNotFound
	}
	m.MembersCount = r.s.memberCount(id)
	return &m, nil
}

func (r *MinistryRepo) Update(ctx context.Context, ministry *models.Ministry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.ministries[ministry.ID]
	if !ok {
		return apperrors.ErrMinistryNotFound
	}
	for id, m := range r.s.ministries {
		if id != ministry.ID && m.Name == ministry.Name {
			return apperrors.ErrMinistryNameExists
		}
	}
	existing.Name = ministry.Name
	existing.Description = ministry.Description
	existing.Color = ministry.Color
	r.s.ministries[ministry.ID] = existing
	return nil
}

func (r *MinistryRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.ministries[id]
	if !ok {
		return apperrors.ErrMinistryNotFound
	}
	m.IsActive = active
	r.s.ministries[id] = m
	return nil
}

func (r *MinistryRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ministries[id]; !ok {
		return apperrors.ErrMinistryNotFound
	}
	if r.s.memberCount(id) > 0 {
		return apperrors.NewReferentialIntegrityError("cannot delete: ministry has members or schedules")
	}
	for _, sch := range r.s.schedules {
		if sch.MinistryID == id {
			return apperrors.NewReferentialIntegrityError("cannot delete: ministry has members or schedules")
		}
	}
	delete(r.s.ministries, id)
	return nil
}

func (r *MinistryRepo) List(ctx context.Context) ([]*models.Ministry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Ministry{}
	for id, m := range r.s.ministries {
		m.MembersCount = r.s.memberCount(id)
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MinistryRepo) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.ministries {
		if id != excludeID && m.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *MinistryRepo) CountExisting(ctx context.Context, ids []string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, id := range ids {
		if _, ok := r.s.ministries[id]; ok {
			count++
		}
	}
	return count, nil
}

func (s *Store) memberCount(ministryID string) int {
	count := 0
	for _, set := range s.memberships {
		if _, ok := set[ministryID]; ok {
			count++
		}
	}
	return count
}

// MembershipRepo implements repositories.IMembershipRepository
type MembershipRepo struct{ s *Store }

func (r *MembershipRepo) ReplaceForUser(ctx context.Context, userID string, ministryIDs []string, isCoordinator bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Memberships.ReplaceForUser"); err != nil {
		return err
	}
	set := map[string]models.MinistryMember{}
	for _, ministryID := range ministryIDs {
		if _, ok := r.s.ministries[ministryID]; !ok {
			return apperrors.NewBadRequestError("unknown ministry")
		}
		set[ministryID] = models.MinistryMember{
			UserID:        userID,
			MinistryID:    ministryID,
			IsCoordinator: isCoordinator,
			JoinedAt:      r.s.next(),
		}
	}
	r.s.memberships[userID] = set
	return nil
}

func (r *MembershipRepo) ListByUsers(ctx context.Context, userIDs []string) (map[string][]models.MinistrySummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string][]models.MinistrySummary{}
	for _, userID := range userIDs {
		for ministryID := range r.s.memberships[userID] {
			m := r.s.ministries[ministryID]
			out[userID] = append(out[userID], models.MinistrySummary{ID: m.ID, Name: m.Name, Color: m.Color})
		}
		sort.Slice(out[userID], func(i, j int) bool { return out[userID][i].Name < out[userID][j].Name })
	}
	return out, nil
}

func (r *MembershipRepo) MinistryIDsForUser(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []string{}
	for ministryID := range r.s.memberships[userID] {
		ids = append(ids, ministryID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MembershipRepo) IsMember(ctx context.Context, userID, ministryID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.memberships[userID][ministryID]
	return ok, nil
}

func (r *MembershipRepo) CountByMinistry(ctx context.Context, ministryID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.memberCount(ministryID), nil
}

// ScheduleRepo implements repositories.IScheduleRepository
type ScheduleRepo struct{ s *Store }

func (r *ScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Schedules.Create"); err != nil {
		return err
	}
	if _, ok := r.s.ministries[schedule.MinistryID]; !ok {
		return apperrors.NewBadRequestError("schedule references an unknown ministry or user")
	}
	if _, ok := r.s.users[schedule.CreatedByID]; !ok {
		return apperrors.NewBadRequestError("schedule references an unknown ministry or user")
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	schedule.CreatedAt = r.s.next()
	r.s.schedules[schedule.ID] = *schedule
	return nil
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sch, ok := r.s.schedules[id]
	if !ok {
		return nil, apperrors.ErrScheduleNotFound
	}
	return &sch, nil
}

func (r *ScheduleRepo) GetDetail(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sch, ok := r.s.schedules[id]
	if !ok {
		return nil, apperrors.ErrScheduleNotFound
	}
	return r.s.detail(sch), nil
}

func (r *ScheduleRepo) Update(ctx context.Context, schedule *models.Schedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Schedules.Update"); err != nil {
		return err
	}
	existing, ok := r.s.schedules[schedule.ID]
	if !ok {
		return apperrors.ErrScheduleNotFound
	}
	if _, ok := r.s.ministries[schedule.MinistryID]; !ok {
		return apperrors.NewBadRequestError("schedule references an unknown ministry or user")
	}
	existing.Type = schedule.Type
	existing.Date = schedule.Date
	existing.Time = schedule.Time
	existing.Notes = schedule.Notes
	existing.MinistryID = schedule.MinistryID
	r.s.schedules[schedule.ID] = existing
	return nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.schedules[id]; !ok {
		return apperrors.ErrScheduleNotFound
	}
	delete(r.s.schedules, id)
	for pid, p := range r.s.participations {
		if p.ScheduleID == id {
			delete(r.s.participations, pid)
		}
	}
	return nil
}

func (r *ScheduleRepo) List(ctx context.Context, filter models.ScheduleFilter) ([]*models.ScheduleDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	allowed := map[string]bool{}
	for _, id := range filter.MinistryIDs {
		allowed[id] = true
	}
	out := []*models.ScheduleDetail{}
	for _, sch := range r.s.schedules {
		if filter.RestrictMinistries && !allowed[sch.MinistryID] {
			continue
		}
		out = append(out, r.s.detail(sch))
	}
	sort.Slice(out, func(i, j int) bool {
		a := out[i].Date.Add(out[i].Time.Sub(time.Unix(0, 0).UTC()))
		b := out[j].Date.Add(out[j].Time.Sub(time.Unix(0, 0).UTC()))
		return a.After(b)
	})
	return out, nil
}

func (s *Store) detail(sch models.Schedule) *models.ScheduleDetail {
	m := s.ministries[sch.MinistryID]
	detail := &models.ScheduleDetail{
		Schedule:      sch,
		MinistryName:  m.Name,
		MinistryColor: m.Color,
		Volunteers:    []models.ScheduleVolunteer{},
	}
	for _, p := range s.participations {
		if p.ScheduleID != sch.ID {
			continue
		}
		detail.Volunteers = append(detail.Volunteers, models.ScheduleVolunteer{
			ParticipationID: p.ID,
			VolunteerID:     p.VolunteerID,
			Name:            s.users[p.VolunteerID].Name,
			Status:          p.Status,
		})
	}
	sort.Slice(detail.Volunteers, func(i, j int) bool { return detail.Volunteers[i].Name < detail.Volunteers[j].Name })
	return detail
}

// ParticipationRepo implements repositories.IParticipationRepository
type ParticipationRepo struct{ s *Store }

func (r *ParticipationRepo) CreateMany(ctx context.Context, scheduleID string, volunteerIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Participations.CreateMany"); err != nil {
		return err
	}
	for _, volunteerID := range volunteerIDs {
		if _, ok := r.s.users[volunteerID]; !ok {
			return apperrors.NewBadRequestError("one or more volunteers do not exist")
		}
		for _, p := range r.s.participations {
			if p.ScheduleID == scheduleID && p.VolunteerID == volunteerID {
				return apperrors.NewConflictError("volunteer already assigned to this schedule")
			}
		}
		id := uuid.NewString()
		r.s.participations[id] = models.Participation{
			ID:          id,
			ScheduleID:  scheduleID,
			VolunteerID: volunteerID,
			Status:      models.ParticipationPending,
		}
	}
	return nil
}

func (r *ParticipationRepo) VolunteerIDs(ctx context.Context, scheduleID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []string{}
	for _, p := range r.s.participations {
		if p.ScheduleID == scheduleID {
			ids = append(ids, p.VolunteerID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *ParticipationRepo) DeleteVolunteers(ctx context.Context, scheduleID string, volunteerIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("Participations.DeleteVolunteers"); err != nil {
		return err
	}
	remove := map[string]bool{}
	for _, id := range volunteerIDs {
		remove[id] = true
	}
	for pid, p := range r.s.participations {
		if p.ScheduleID == scheduleID && remove[p.VolunteerID] {
			delete(r.s.participations, pid)
		}
	}
	return nil
}

func (r *ParticipationRepo) DeleteBySchedule(ctx context.Context, scheduleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for pid, p := range r.s.participations {
		if p.ScheduleID == scheduleID {
			delete(r.s.participations, pid)
		}
	}
	return nil
}

func (r *ParticipationRepo) TransitionFromPending(ctx context.Context, id, volunteerID string, to models.ParticipationStatus, reason *string, confirmedAt *time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participations[id]
	if !ok || p.VolunteerID != volunteerID || p.Status != models.ParticipationPending {
		return false, nil
	}
	p.Status = to
	p.ChangeReason = nil
	if reason != nil && *reason != "" {
		v := *reason
		p.ChangeReason = &v
	}
	p.ConfirmedAt = nil
	if confirmedAt != nil {
		v := *confirmedAt
		p.ConfirmedAt = &v
	}
	r.s.participations[id] = p
	return true, nil
}

func (r *ParticipationRepo) GetOwned(ctx context.Context, id, volunteerID string) (*models.Participation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participations[id]
	if !ok || p.VolunteerID != volunteerID {
		return nil, apperrors.ErrParticipationNotFound
	}
	return &p, nil
}

// Get returns any participation by id, for assertions
func (r *ParticipationRepo) Get(id string) (models.Participation, bool) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participations[id]
	return p, ok
}

func (r *ParticipationRepo) List(ctx context.Context, filter models.ParticipationFilter) ([]*models.ParticipationView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.ParticipationView{}
	for _, p := range r.s.participations {
		view := r.s.view(p)
		if matches(view, filter) {
			out = append(out, view)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.Before(out[j].Time)
		}
		return out[i].VolunteerName < out[j].VolunteerName
	})
	return out, nil
}

func (r *ParticipationRepo) Count(ctx context.Context, filter models.ParticipationFilter) (int, error) {
	views, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(views), nil
}

func (s *Store) view(p models.Participation) *models.ParticipationView {
	sch := s.schedules[p.ScheduleID]
	m := s.ministries[sch.MinistryID]
	return &models.ParticipationView{
		ID:                p.ID,
		ScheduleID:        sch.ID,
		ScheduleType:      sch.Type,
		Date:              sch.Date,
		Time:              sch.Time,
		Notes:             sch.Notes,
		MinistryID:        m.ID,
		MinistryName:      m.Name,
		MinistryColor:     m.Color,
		VolunteerID:       p.VolunteerID,
		VolunteerName:     s.users[p.VolunteerID].Name,
		Status:            p.Status,
		ChangeReason:      p.ChangeReason,
		ConfirmedAt:       p.ConfirmedAt,
		ScheduleCreatedAt: sch.CreatedAt,
	}
}

func matches(v *models.ParticipationView, f models.ParticipationFilter) bool {
	if f.VolunteerID != "" && v.VolunteerID != f.VolunteerID {
		return false
	}
	if f.RestrictMinistries {
		found := false
		for _, id := range f.MinistryIDs {
			if id == v.MinistryID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.MinistryName != "" && v.MinistryName != f.MinistryName {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(v.VolunteerName), needle) &&
			!strings.Contains(strings.ToLower(v.ScheduleType), needle) &&
			!strings.Contains(strings.ToLower(v.MinistryName), needle) {
			return false
		}
	}
	if f.DateFrom != nil && v.Date.Before(*f.DateFrom) {
		return false
	}
	if f.ConfirmedFrom != nil && (v.ConfirmedAt == nil || v.ConfirmedAt.Before(*f.ConfirmedFrom)) {
		return false
	}
	if f.ConfirmedTo != nil && (v.ConfirmedAt == nil || !v.ConfirmedAt.Before(*f.ConfirmedTo)) {
		return false
	}
	return true
}
