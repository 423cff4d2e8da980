package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/db"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	"github.com/yigit/parishscheduler/internal/pkg/dberrors"
	"github.com/yigit/parishscheduler/internal/pkg/helpers"
)

var participationViewColumns = []string{
	"sv.id", "s.id", "s.type", "s.schedule_date", "s.schedule_time", "s.notes",
	"m.id", "m.name", "m.color",
	"u.id", "u.name",
	"sv.status", "sv.change_reason", "sv.confirmed_at", "s.created_at",
}

// ParticipationRepository handles database operations for schedule volunteers
type ParticipationRepository struct {
	database *db.PostgresDB
	sb       squirrel.StatementBuilderType
}

// NewParticipationRepository creates a new ParticipationRepository
func NewParticipationRepository(database *db.PostgresDB) *ParticipationRepository {
	return &ParticipationRepository{
		database: database,
		sb:       statementBuilder(),
	}
}

// CreateMany inserts one PENDING participation per volunteer
func (r *ParticipationRepository) CreateMany(ctx context.Context, scheduleID string, volunteerIDs []string) error {
	if len(volunteerIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert("schedule_volunteers").Columns("id", "schedule_id", "volunteer_id", "status")
	for _, volunteerID := range volunteerIDs {
		insert = insert.Values(uuid.NewString(), scheduleID, volunteerID, string(models.ParticipationPending))
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build participation insert: %w", err)
	}

	if _, err := r.database.Conn(ctx).Exec(ctx, query, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewBadRequestError("one or more volunteers do not exist")
		}
		if _, ok := dberrors.UniqueViolation(err); ok {
			return apperrors.NewConflictError("volunteer already assigned to this schedule")
		}
		return fmt.Errorf("error creating participations: %w", err)
	}
	return nil
}

// VolunteerIDs returns the volunteers currently assigned to a schedule
func (r *ParticipationRepository) VolunteerIDs(ctx context.Context, scheduleID string) ([]string, error) {
	rows, err := r.database.Conn(ctx).Query(ctx,
		`SELECT volunteer_id FROM schedule_volunteers WHERE schedule_id = $1`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("error listing schedule volunteers: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning volunteer id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteVolunteers removes the participations of volunteerIDs from a schedule
func (r *ParticipationRepository) DeleteVolunteers(ctx context.Context, scheduleID string, volunteerIDs []string) error {
	if len(volunteerIDs) == 0 {
		return nil
	}

	_, err := r.database.Conn(ctx).Exec(ctx,
		`DELETE FROM schedule_volunteers WHERE schedule_id = $1 AND volunteer_id = ANY($2)`, scheduleID, volunteerIDs)
	if err != nil {
		return fmt.Errorf("error removing schedule volunteers: %w", err)
	}
	return nil
}

// DeleteBySchedule removes every participation of a schedule
func (r *ParticipationRepository) DeleteBySchedule(ctx context.Context, scheduleID string) error {
	if _, err := r.database.Conn(ctx).Exec(ctx, `DELETE FROM schedule_volunteers WHERE schedule_id = $1`, scheduleID); err != nil {
		return fmt.Errorf("error removing schedule volunteers: %w", err)
	}
	return nil
}

// TransitionFromPending applies the status change as one conditional write
func (r *ParticipationRepository) TransitionFromPending(ctx context.Context, id, volunteerID string, to models.ParticipationStatus, reason *string, confirmedAt *time.Time) (bool, error) {
	var confirmed pgtype.Timestamptz
	if confirmedAt != nil {
		confirmed = pgtype.Timestamptz{Time: *confirmedAt, Valid: true}
	}

	cmdTag, err := r.database.Conn(ctx).Exec(ctx, `
		UPDATE schedule_volunteers
		SET status = $1, change_reason = $2, confirmed_at = $3
		WHERE id = $4 AND volunteer_id = $5 AND status = $6
	`, string(to), helpers.GetNullString(reason), confirmed, id, volunteerID, string(models.ParticipationPending))
	if err != nil {
		return false, fmt.Errorf("error updating participation: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// GetOwned reads a participation belonging to volunteerID
func (r *ParticipationRepository) GetOwned(ctx context.Context, id, volunteerID string) (*models.Participation, error) {
	var participation models.Participation
	var status string
	var reason pgtype.Text
	var confirmedAt pgtype.Timestamptz

	err := r.database.Conn(ctx).QueryRow(ctx, `
		SELECT id, schedule_id, volunteer_id, status, change_reason, confirmed_at
		FROM schedule_volunteers
		WHERE id = $1 AND volunteer_id = $2
	`, id, volunteerID).Scan(
		&participation.ID, &participation.ScheduleID, &participation.VolunteerID, &status, &reason, &confirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrParticipationNotFound
		}
		return nil, fmt.Errorf("error retrieving participation: %w", err)
	}

	participation.Status = models.ParticipationStatus(status)
	participation.ChangeReason = helpers.StringPtr(reason)
	participation.ConfirmedAt = helpers.TimePtr(confirmedAt)
	return &participation, nil
}

// List returns flattened participations ordered by schedule date and time
func (r *ParticipationRepository) List(ctx context.Context, filter models.ParticipationFilter) ([]*models.ParticipationView, error) {
	if filter.RestrictMinistries && len(filter.MinistryIDs) == 0 {
		return []*models.ParticipationView{}, nil
	}

	query, args, err := r.applyFilter(r.sb.Select(participationViewColumns...), filter).
		OrderBy("s.schedule_date ASC", "s.schedule_time ASC", "u.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build participation query: %w", err)
	}

	rows, err := r.database.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing participations: %w", err)
	}
	defer rows.Close()

	views := []*models.ParticipationView{}
	for rows.Next() {
		var view models.ParticipationView
		var date pgtype.Date
		var clock pgtype.Time
		var notes, reason pgtype.Text
		var confirmedAt pgtype.Timestamptz
		var status string
		if err := rows.Scan(
			&view.ID, &view.ScheduleID, &view.ScheduleType, &date, &clock, &notes,
			&view.MinistryID, &view.MinistryName, &view.MinistryColor,
			&view.VolunteerID, &view.VolunteerName,
			&status, &reason, &confirmedAt, &view.ScheduleCreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning participation: %w", err)
		}
		view.Date = helpers.FromPgDate(date)
		view.Time = helpers.FromPgTime(clock)
		view.Notes = helpers.StringPtr(notes)
		view.Status = models.ParticipationStatus(status)
		view.ChangeReason = helpers.StringPtr(reason)
		view.ConfirmedAt = helpers.TimePtr(confirmedAt)
		views = append(views, &view)
	}
	return views, rows.Err()
}

// Count counts participations matching filter
func (r *ParticipationRepository) Count(ctx context.Context, filter models.ParticipationFilter) (int, error) {
	if filter.RestrictMinistries && len(filter.MinistryIDs) == 0 {
		return 0, nil
	}

	query, args, err := r.applyFilter(r.sb.Select("COUNT(*)"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build participation count: %w", err)
	}

	var count int
	if err := r.database.Conn(ctx).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting participations: %w", err)
	}
	return count, nil
}

func (r *ParticipationRepository) applyFilter(q squirrel.SelectBuilder, filter models.ParticipationFilter) squirrel.SelectBuilder {
	q = q.From("schedule_volunteers sv").
		Join("schedules s ON s.id = sv.schedule_id").
		Join("ministries m ON m.id = s.ministry_id").
		Join("users u ON u.id = sv.volunteer_id")

	if filter.VolunteerID != "" {
		q = q.Where(squirrel.Eq{"sv.volunteer_id": filter.VolunteerID})
	}
	if filter.RestrictMinistries {
		q = q.Where(squirrel.Eq{"s.ministry_id": filter.MinistryIDs})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"sv.status": string(filter.Status)})
	}
	if filter.MinistryName != "" {
		q = q.Where(squirrel.Eq{"m.name": filter.MinistryName})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"u.name": pattern},
			squirrel.ILike{"s.type": pattern},
			squirrel.ILike{"m.name": pattern},
		})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"s.schedule_date": helpers.ToPgDate(*filter.DateFrom)})
	}
	if filter.ConfirmedFrom != nil {
		q = q.Where(squirrel.GtOrEq{"sv.confirmed_at": *filter.ConfirmedFrom})
	}
	if filter.ConfirmedTo != nil {
		q = q.Where(squirrel.Lt{"sv.confirmed_at": *filter.ConfirmedTo})
	}
	return q
}
