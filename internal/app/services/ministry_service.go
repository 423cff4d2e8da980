package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/repositories"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
)

const (
	minMinistryNameLength        = 2
	minMinistryDescriptionLength = 10
)

// MinistryService handles ministry operations
type MinistryService struct {
	ministryRepo   repositories.IMinistryRepository
	membershipRepo repositories.IMembershipRepository
	logger         zerolog.Logger
}

// NewMinistryService creates a new MinistryService
func NewMinistryService(
	ministryRepo repositories.IMinistryRepository,
	membershipRepo repositories.IMembershipRepository,
	logger zerolog.Logger,
) *MinistryService {
	return &MinistryService{
		ministryRepo:   ministryRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

// List returns every ministry with its member count
func (s *MinistryService) List(ctx context.Context) ([]*models.Ministry, error) {
	return s.ministryRepo.List(ctx)
}

// Get returns one ministry
func (s *MinistryService) Get(ctx context.Context, id string) (*models.Ministry, error) {
	return s.ministryRepo.GetByID(ctx, id)
}

// Create validates and stores a new active ministry
func (s *MinistryService) Create(ctx context.Context, req *dto.MinistryRequest) (*models.Ministry, error) {
	name, description, err := validateMinistry(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.ministryRepo.NameExists(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrMinistryNameExists
	}

	ministry := &models.Ministry{
		Name:        name,
		Description: description,
		Color:       req.Color,
		IsActive:    true,
	}
	if err := s.ministryRepo.Create(ctx, ministry); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ministryID", ministry.ID).Str("name", name).Msg("Ministry created")
	return ministry, nil
}

// Update validates and rewrites name, description and color
func (s *MinistryService) Update(ctx context.Context, id string, req *dto.MinistryRequest) (*models.Ministry, error) {
	name, description, err := validateMinistry(req)
	if err != nil {
		return nil, err
	}

	ministry, err := s.ministryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.ministryRepo.NameExists(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrMinistryNameExists
	}

	ministry.Name = name
	ministry.Description = description
	ministry.Color = req.Color
	if err := s.ministryRepo.Update(ctx, ministry); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ministryID", id).Msg("Ministry updated")
	return ministry, nil
}

// ToggleStatus inverts the active flag of a ministry
func (s *MinistryService) ToggleStatus(ctx context.Context, id string) (*models.Ministry, error) {
	ministry, err := s.ministryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ministry.IsActive = !ministry.IsActive
	if err := s.ministryRepo.SetActive(ctx, id, ministry.IsActive); err != nil {
		return nil, err
	}
	return ministry, nil
}

// Delete removes a ministry without members
func (s *MinistryService) Delete(ctx context.Context, id string) error {
	if _, err := s.ministryRepo.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.membershipRepo.CountByMinistry(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewReferentialIntegrityError("cannot delete a ministry that still has members")
	}

	if err := s.ministryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("ministryID", id).Msg("Ministry deleted")
	return nil
}

func validateMinistry(req *dto.MinistryRequest) (string, string, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)

	if utf8.RuneCountInString(name) < minMinistryNameLength {
		return "", "", apperrors.NewValidationError("name must be at least 2 characters")
	}
	if utf8.RuneCountInString(description) < minMinistryDescriptionLength {
		return "", "", apperrors.NewValidationError("description must be at least 10 characters")
	}
	return name, description, nil
}
