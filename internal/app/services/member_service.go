package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/parishscheduler/internal/app/auth"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/repositories"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
)

// MemberService handles parish member accounts
type MemberService struct {
	tx             repositories.Transactor
	userRepo       repositories.IUserRepository
	ministryRepo   repositories.IMinistryRepository
	membershipRepo repositories.IMembershipRepository
	logger         zerolog.Logger
}

// NewMemberService creates a new MemberService
func NewMemberService(
	tx repositories.Transactor,
	userRepo repositories.IUserRepository,
	ministryRepo repositories.IMinistryRepository,
	membershipRepo repositories.IMembershipRepository,
	logger zerolog.Logger,
) *MemberService {
	return &MemberService{
		tx:             tx,
		userRepo:       userRepo,
		ministryRepo:   ministryRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

// List returns the members the actor may see, newest first
func (s *MemberService) List(ctx context.Context, actor auth.Identity) ([]dto.MemberResponse, error) {
	roles := appAuth.VisibleMemberRoles(actor.Role)
	if len(roles) == 0 {
		return nil, apperrors.NewForbiddenError("access denied")
	}

	users, err := s.userRepo.ListByRoles(ctx, roles)
	if err != nil {
		return nil, err
	}
	if err := s.attachMinistries(ctx, users...); err != nil {
		return nil, err
	}

	members := make([]dto.MemberResponse, 0, len(users))
	for _, user := range users {
		members = append(members, dto.NewMemberResponse(user))
	}
	return members, nil
}

// Get returns one member visible to the actor
func (s *MemberService) Get(ctx context.Context, actor auth.Identity, id string) (*dto.MemberResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !roleVisible(actor.Role, user.Role) {
		return nil, apperrors.NewForbiddenError("access denied")
	}
	if err := s.attachMinistries(ctx, user); err != nil {
		return nil, err
	}
	member := dto.NewMemberResponse(user)
	return &member, nil
}

// Create registers a member with address and ministries in one transaction
func (s *MemberService) Create(ctx context.Context, actor auth.Identity, req *dto.CreateMemberRequest) (*dto.MemberResponse, error) {
	if err := checkAssignableRole(actor.Role, req.UserType); err != nil {
		return nil, err
	}
	ministryIDs, err := s.validateMinistries(ctx, req.Ministries)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Password: hashedPassword,
		Phone:    strings.TrimSpace(req.Phone),
		CPF:      strings.TrimSpace(req.CPF),
		RG:       strings.TrimSpace(req.RG),
		Role:     req.UserType,
		Status:   models.UserStatusActive,
	}
	if user.Name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.CheckUniqueness(ctx, user.Email, user.CPF, user.RG, ""); err != nil {
			return err
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		if err := s.userRepo.SaveAddress(ctx, user.ID, req.Address.ToModel()); err != nil {
			return err
		}
		return s.membershipRepo.ReplaceForUser(ctx, user.ID, ministryIDs, user.Role == models.RoleCoordinator)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("memberID", user.ID).
		Str("role", string(user.Role)).
		Str("createdBy", actor.UserID).
		Msg("Member created")

	return s.Get(ctx, actor, user.ID)
}

// Update rewrites a member, its address and its ministry set in one transaction
func (s *MemberService) Update(ctx context.Context, actor auth.Identity, id string, req *dto.UpdateMemberRequest) (*dto.MemberResponse, error) {
	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appAuth.CanManageMember(actor.Role, target.Role); err != nil {
		return nil, err
	}
	if err := checkAssignableRole(actor.Role, req.UserType); err != nil {
		return nil, err
	}
	ministryIDs, err := s.validateMinistries(ctx, req.Ministries)
	if err != nil {
		return nil, err
	}

	target.Name = strings.TrimSpace(req.Name)
	target.Email = normalizeEmail(req.Email)
	target.Phone = strings.TrimSpace(req.Phone)
	target.CPF = strings.TrimSpace(req.CPF)
	target.RG = strings.TrimSpace(req.RG)
	target.Role = req.UserType
	if target.Name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if req.Password != "" {
		hashedPassword, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		target.Password = hashedPassword
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.CheckUniqueness(ctx, target.Email, target.CPF, target.RG, target.ID); err != nil {
			return err
		}
		if err := s.userRepo.Update(ctx, target); err != nil {
			return err
		}
		if err := s.userRepo.SaveAddress(ctx, target.ID, req.Address.ToModel()); err != nil {
			return err
		}
		return s.membershipRepo.ReplaceForUser(ctx, target.ID, ministryIDs, target.Role == models.RoleCoordinator)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("memberID", id).Str("updatedBy", actor.UserID).Msg("Member updated")

	return s.Get(ctx, actor, id)
}

// ToggleStatus flips a member between active and inactive
func (s *MemberService) ToggleStatus(ctx context.Context, actor auth.Identity, id string) (*dto.MemberStatusResponse, error) {
	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appAuth.CanManageMember(actor.Role, target.Role); err != nil {
		return nil, err
	}

	status := target.Status.Toggle()
	if err := s.userRepo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info().Str("memberID", id).Str("status", string(status)).Msg("Member status changed")
	return &dto.MemberStatusResponse{ID: id, Status: status}, nil
}

// Delete removes a member that nothing references anymore
func (s *MemberService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if id == actor.UserID {
		return apperrors.NewValidationError("you cannot delete your own account")
	}

	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := appAuth.CanManageMember(actor.Role, target.Role); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("memberID", id).Str("deletedBy", actor.UserID).Msg("Member deleted")
	return nil
}

func (s *MemberService) attachMinistries(ctx context.Context, users ...*models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	byUser, err := s.membershipRepo.ListByUsers(ctx, ids)
	if err != nil {
		return err
	}
	for _, u := range users {
		u.Ministries = byUser[u.ID]
	}
	return nil
}

func (s *MemberService) validateMinistries(ctx context.Context, ministryIDs []string) ([]string, error) {
	ids := uniqueIDs(ministryIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("at least one ministry is required")
	}

	count, err := s.ministryRepo.CountExisting(ctx, ids)
	if err != nil {
		return nil, err
	}
	if count != len(ids) {
		return nil, apperrors.NewBadRequestError("one or more ministries do not exist")
	}
	return ids, nil
}

// checkAssignableRole applies the creator-role rule: coordinators only create
// volunteers, directors create coordinators or volunteers.
func checkAssignableRole(actor, target models.Role) error {
	if actor == models.RoleCoordinator && target != models.RoleVolunteer {
		return apperrors.NewForbiddenError("coordinators can only create volunteers")
	}
	if !appAuth.CanAssignRole(actor, target) {
		if actor.IsManager() {
			return apperrors.NewValidationError("invalid user type")
		}
		return apperrors.NewForbiddenError("access denied")
	}
	return nil
}

func roleVisible(actor, target models.Role) bool {
	for _, r := range appAuth.VisibleMemberRoles(actor) {
		if r == target {
			return true
		}
	}
	return false
}
