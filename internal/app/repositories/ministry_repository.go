package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/db"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	"github.com/yigit/parishscheduler/internal/pkg/dberrors"
)

var ministryColumns = []string{
	"m.id", "m.name", "m.description", "m.color", "m.is_active", "m.created_at",
	"(SELECT COUNT(*) FROM ministry_members mm WHERE mm.ministry_id = m.id) AS members_count",
}

// MinistryRepository handles database operations for ministries
type MinistryRepository struct {
	database *db.PostgresDB
	sb       squirrel.StatementBuilderType
}

// NewMinistryRepository creates a new MinistryRepository
func NewMinistryRepository(database *db.PostgresDB) *MinistryRepository {
	return &MinistryRepository{
		database: database,
		sb:       statementBuilder(),
	}
}

// Create inserts a ministry
func (r *MinistryRepository) Create(ctx context.Context, ministry *models.Ministry) error {
	if ministry.ID == "" {
		ministry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO ministries (id, name, description, color, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.database.Conn(ctx).QueryRow(ctx, query,
		ministry.ID, ministry.Name, ministry.Description, ministry.Color, ministry.IsActive,
	).Scan(&ministry.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "ministries_name_key") {
			return apperrors.ErrMinistryNameExists
		}
		return fmt.Errorf("error creating ministry: %w", err)
	}
	return nil
}

// GetByID retrieves a ministry with its member count
func (r *MinistryRepository) GetByID(ctx context.Context, id string) (*models.Ministry, error) {
	query, args, err := r.sb.Select(ministryColumns...).
		From("ministries m").
		Where(squirrel.Eq{"m.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ministry query: %w", err)
	}

	ministry, err := scanMinistry(r.database.Conn(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMinistryNotFound
		}
		return nil, fmt.Errorf("error retrieving ministry: %w", err)
	}
	return ministry, nil
}

// Update writes name, description and color
func (r *MinistryRepository) Update(ctx context.Context, ministry *models.Ministry) error {
	cmdTag, err := r.database.Conn(ctx).Exec(ctx,
		`UPDATE ministries SET name = $1, description = $2, color = $3 WHERE id = $4`,
		ministry.Name, ministry.Description, ministry.Color, ministry.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "ministries_name_key") {
			return apperrors.ErrMinistryNameExists
		}
		return fmt.Errorf("error updating ministry: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrMinistryNotFound
	}
	return nil
}

// SetActive changes the active flag of a ministry
func (r *MinistryRepository) SetActive(ctx context.Context, id string, active bool) error {
	cmdTag, err := r.database.Conn(ctx).Exec(ctx, `UPDATE ministries SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("error updating ministry status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrMinistryNotFound
	}
	return nil
}

// Delete removes a ministry
func (r *MinistryRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.database.Conn(ctx).Exec(ctx, `DELETE FROM ministries WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewReferentialIntegrityError("cannot delete: ministry has members or schedules")
		}
		return fmt.Errorf("error deleting ministry: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrMinistryNotFound
	}
	return nil
}

// List returns every ministry, oldest first
func (r *MinistryRepository) List(ctx context.Context) ([]*models.Ministry, error) {
	query, args, err := r.sb.Select(ministryColumns...).
		From("ministries m").
		OrderBy("m.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ministry list query: %w", err)
	}

	rows, err := r.database.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing ministries: %w", err)
	}
	defer rows.Close()

	ministries := []*models.Ministry{}
	for rows.Next() {
		ministry, err := scanMinistry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning ministry: %w", err)
		}
		ministries = append(ministries, ministry)
	}
	return ministries, rows.Err()
}

// NameExists checks for an exact name match held by a ministry other than excludeID
func (r *MinistryRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	err := r.database.Conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM ministries WHERE name = $1 AND id <> $2)`, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking ministry name: %w", err)
	}
	return exists, nil
}

// CountExisting counts how many of ids belong to existing ministries
func (r *MinistryRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int
	err := r.database.Conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ministries WHERE id = ANY($1)`, ids).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting ministries: %w", err)
	}
	return count, nil
}

func scanMinistry(row pgx.Row) (*models.Ministry, error) {
	var ministry models.Ministry
	err := row.Scan(
		&ministry.ID, &ministry.Name, &ministry.Description, &ministry.Color, &ministry.IsActive,
		&ministry.CreatedAt, &ministry.MembersCount,
	)
	if err != nil {
		return nil, err
	}
	return &ministry, nil
}
