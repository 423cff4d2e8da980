package repositories

import (
	"context"
	"errors"
	"fmt"

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

var scheduleDetailColumns = []string{
	"s.id", "s.type", "s.schedule_date", "s.schedule_time", "s.notes", "s.ministry_id", "s.created_by_id", "s.created_at",
	"m.name", "m.color",
}

// ScheduleRepository handles database operations for schedules
type ScheduleRepository struct {
	database *db.PostgresDB
	sb       squirrel.StatementBuilderType
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(database *db.PostgresDB) *ScheduleRepository {
	return &ScheduleRepository{
		database: database,
		sb:       statementBuilder(),
	}
}

// Create inserts a schedule
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}

	query := `
		INSERT INTO schedules (id, type, schedule_date, schedule_time, notes, ministry_id, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.database.Conn(ctx).QueryRow(ctx, query,
		schedule.ID, schedule.Type, helpers.ToPgDate(schedule.Date), helpers.ToPgTime(schedule.Time),
		helpers.GetNullString(schedule.Notes), schedule.MinistryID, schedule.CreatedByID,
	).Scan(&schedule.CreatedAt)
	if err != nil {
		return mapScheduleWriteError(err)
	}
	return nil
}

// GetByID retrieves a schedule row
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := `
		SELECT id, type, schedule_date, schedule_time, notes, ministry_id, created_by_id, created_at
		FROM schedules
		WHERE id = $1
	`

	var schedule models.Schedule
	var date pgtype.Date
	var clock pgtype.Time
	var notes pgtype.Text
	err := r.database.Conn(ctx).QueryRow(ctx, query, id).Scan(
		&schedule.ID, &schedule.Type, &date, &clock, &notes, &schedule.MinistryID, &schedule.CreatedByID, &schedule.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("error retrieving schedule: %w", err)
	}

	schedule.Date = helpers.FromPgDate(date)
	schedule.Time = helpers.FromPgTime(clock)
	schedule.Notes = helpers.StringPtr(notes)
	return &schedule, nil
}

// GetDetail retrieves a schedule with its ministry and volunteers
func (r *ScheduleRepository) GetDetail(ctx context.Context, id string) (*models.ScheduleDetail, error) {
	details, err := r.listDetails(ctx, squirrel.Eq{"s.id": id})
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, apperrors.ErrScheduleNotFound
	}
	return details[0], nil
}

// Update writes the scalar fields of a schedule
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	query := `
		UPDATE schedules
		SET type = $1, schedule_date = $2, schedule_time = $3, notes = $4, ministry_id = $5
		WHERE id = $6
	`

	cmdTag, err := r.database.Conn(ctx).Exec(ctx, query,
		schedule.Type, helpers.ToPgDate(schedule.Date), helpers.ToPgTime(schedule.Time),
		helpers.GetNullString(schedule.Notes), schedule.MinistryID, schedule.ID,
	)
	if err != nil {
		return mapScheduleWriteError(err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrScheduleNotFound
	}
	return nil
}

// Delete removes a schedule
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.database.Conn(ctx).Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting schedule: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrScheduleNotFound
	}
	return nil
}

// List returns schedules with volunteers, newest date first
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]*models.ScheduleDetail, error) {
	var where squirrel.Sqlizer = squirrel.Expr("TRUE")
	if filter.RestrictMinistries {
		if len(filter.MinistryIDs) == 0 {
			return []*models.ScheduleDetail{}, nil
		}
		where = squirrel.Eq{"s.ministry_id": filter.MinistryIDs}
	}
	return r.listDetails(ctx, where)
}

func (r *ScheduleRepository) listDetails(ctx context.Context, where squirrel.Sqlizer) ([]*models.ScheduleDetail, error) {
	query, args, err := r.sb.Select(scheduleDetailColumns...).
		From("schedules s").
		Join("ministries m ON m.id = s.ministry_id").
		Where(where).
		OrderBy("s.schedule_date DESC", "s.schedule_time DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule query: %w", err)
	}

	conn := r.database.Conn(ctx)
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing schedules: %w", err)
	}
	defer rows.Close()

	details := []*models.ScheduleDetail{}
	byID := map[string]*models.ScheduleDetail{}
	for rows.Next() {
		var detail models.ScheduleDetail
		var date pgtype.Date
		var clock pgtype.Time
		var notes pgtype.Text
		if err := rows.Scan(
			&detail.ID, &detail.Type, &date, &clock, &notes, &detail.MinistryID, &detail.CreatedByID, &detail.CreatedAt,
			&detail.MinistryName, &detail.MinistryColor,
		); err != nil {
			return nil, fmt.Errorf("error scanning schedule: %w", err)
		}
		detail.Date = helpers.FromPgDate(date)
		detail.Time = helpers.FromPgTime(clock)
		detail.Notes = helpers.StringPtr(notes)
		detail.Volunteers = []models.ScheduleVolunteer{}
		details = append(details, &detail)
		byID[detail.ID] = &detail
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(details) == 0 {
		return details, nil
	}

	ids := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}

	volunteerRows, err := conn.Query(ctx, `
		SELECT sv.schedule_id, sv.id, sv.volunteer_id, u.name, sv.status
		FROM schedule_volunteers sv
		JOIN users u ON u.id = sv.volunteer_id
		WHERE sv.schedule_id = ANY($1)
		ORDER BY u.name ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("error listing schedule volunteers: %w", err)
	}
	defer volunteerRows.Close()

	for volunteerRows.Next() {
		var scheduleID, status string
		var volunteer models.ScheduleVolunteer
		if err := volunteerRows.Scan(&scheduleID, &volunteer.ParticipationID, &volunteer.VolunteerID, &volunteer.Name, &status); err != nil {
			return nil, fmt.Errorf("error scanning schedule volunteer: %w", err)
		}
		volunteer.Status = models.ParticipationStatus(status)
		if detail, ok := byID[scheduleID]; ok {
			detail.Volunteers = append(detail.Volunteers, volunteer)
		}
	}

	return details, volunteerRows.Err()
}

func mapScheduleWriteError(err error) error {
	if dberrors.IsForeignKeyViolation(err) {
		return apperrors.NewBadRequestError("schedule references an unknown ministry or user")
	}
	return fmt.Errorf("error writing schedule: %w", err)
}
