package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/app/repositories"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
)

// ExportFormatCSV is the only supported report export format
const ExportFormatCSV = "csv"

var reportCSVHeader = []string{
	"date", "time", "type", "ministry", "volunteer", "status", "change_reason", "confirmed_at",
}

// ReportService builds participation reports for managers
type ReportService struct {
	participationRepo repositories.IParticipationRepository
	membershipRepo    repositories.IMembershipRepository
	logger            zerolog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	participationRepo repositories.IParticipationRepository,
	membershipRepo repositories.IMembershipRepository,
	logger zerolog.Logger,
) *ReportService {
	return &ReportService{
		participationRepo: participationRepo,
		membershipRepo:    membershipRepo,
		logger:            logger,
	}
}

// Schedules lists participations matching the filter, ordered by schedule date
func (s *ReportService) Schedules(ctx context.Context, actor auth.Identity, req *dto.ReportFilterRequest) ([]dto.ParticipationResponse, error) {
	views, err := s.query(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	return dto.NewParticipationResponses(views), nil
}

// Export writes the filtered report to w in the requested format
func (s *ReportService) Export(ctx context.Context, actor auth.Identity, req *dto.ReportExportRequest, w io.Writer) error {
	if !strings.EqualFold(strings.TrimSpace(req.Format), ExportFormatCSV) {
		return apperrors.NewValidationError(fmt.Sprintf("unsupported export format %q", req.Format))
	}

	views, err := s.query(ctx, actor, &req.ReportFilterRequest)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(reportCSVHeader); err != nil {
		return fmt.Errorf("error writing report header: %w", err)
	}
	for _, v := range views {
		row := dto.NewParticipationResponse(v)
		var reason, confirmedAt string
		if row.ChangeReason != nil {
			reason = *row.ChangeReason
		}
		if row.ConfirmedAt != nil {
			confirmedAt = row.ConfirmedAt.UTC().Format(time.RFC3339)
		}
		record := []string{row.Date, row.Time, row.Type, row.Ministry, row.Volunteer, row.Status, reason, confirmedAt}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing report row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("error flushing report: %w", err)
	}

	s.logger.Info().Str("userID", actor.UserID).Int("rows", len(views)).Msg("Schedule report exported")
	return nil
}

func (s *ReportService) query(ctx context.Context, actor auth.Identity, req *dto.ReportFilterRequest) ([]*models.ParticipationView, error) {
	filter, err := ParseReportFilter(req)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleDirector:
	case models.RoleCoordinator:
		ids, err := s.membershipRepo.MinistryIDsForUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		filter.RestrictMinistries = true
		filter.MinistryIDs = ids
	default:
		return nil, apperrors.NewForbiddenError("access denied")
	}

	return s.participationRepo.List(ctx, filter)
}

// ParseReportFilter normalizes report query parameters. "todos" and "all" disable a filter.
func ParseReportFilter(req *dto.ReportFilterRequest) (models.ParticipationFilter, error) {
	var filter models.ParticipationFilter

	if status := strings.TrimSpace(req.Status); !isWildcard(status) {
		parsed := models.ParticipationStatus(strings.ToUpper(status))
		if !parsed.IsValid() {
			return filter, apperrors.NewValidationError(fmt.Sprintf("invalid status filter %q", req.Status))
		}
		filter.Status = parsed
	}
	if ministry := strings.TrimSpace(req.Ministry); !isWildcard(ministry) {
		filter.MinistryName = ministry
	}
	filter.Search = strings.TrimSpace(req.Search)
	return filter, nil
}

func isWildcard(value string) bool {
	return value == "" || strings.EqualFold(value, "todos") || strings.EqualFold(value, "all")
}
