package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/db"
)

// MembershipRepository handles the ministry_members join table
type MembershipRepository struct {
	database *db.PostgresDB
	sb       squirrel.StatementBuilderType
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(database *db.PostgresDB) *MembershipRepository {
	return &MembershipRepository{
		database: database,
		sb:       statementBuilder(),
	}
}

// ReplaceForUser deletes every membership of userID and inserts ministryIDs.
// Callers run it inside a transaction.
func (r *MembershipRepository) ReplaceForUser(ctx context.Context, userID string, ministryIDs []string, isCoordinator bool) error {
	conn := r.database.Conn(ctx)

	if _, err := conn.Exec(ctx, `DELETE FROM ministry_members WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error clearing memberships: %w", err)
	}

	if len(ministryIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert("ministry_members").Columns("user_id", "ministry_id", "is_coordinator")
	for _, ministryID := range ministryIDs {
		insert = insert.Values(userID, ministryID, isCoordinator)
	}
	query, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build membership insert: %w", err)
	}

	if _, err := conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error inserting memberships: %w", err)
	}
	return nil
}

// ListByUsers returns the ministries of each user in userIDs
func (r *MembershipRepository) ListByUsers(ctx context.Context, userIDs []string) (map[string][]models.MinistrySummary, error) {
	result := make(map[string][]models.MinistrySummary, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query, args, err := r.sb.Select("mm.user_id", "m.id", "m.name", "m.color").
		From("ministry_members mm").
		Join("ministries m ON m.id = mm.ministry_id").
		Where(squirrel.Eq{"mm.user_id": userIDs}).
		OrderBy("m.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build membership query: %w", err)
	}

	rows, err := r.database.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var summary models.MinistrySummary
		if err := rows.Scan(&userID, &summary.ID, &summary.Name, &summary.Color); err != nil {
			return nil, fmt.Errorf("error scanning membership: %w", err)
		}
		result[userID] = append(result[userID], summary)
	}
	return result, rows.Err()
}

// MinistryIDsForUser returns the ids of the ministries userID belongs to
func (r *MembershipRepository) MinistryIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.database.Conn(ctx).Query(ctx,
		`SELECT ministry_id FROM ministry_members WHERE user_id = $1 ORDER BY ministry_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing user ministries: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning ministry id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsMember reports whether userID belongs to ministryID
func (r *MembershipRepository) IsMember(ctx context.Context, userID, ministryID string) (bool, error) {
	var exists bool
	err := r.database.Conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM ministry_members WHERE user_id = $1 AND ministry_id = $2)`,
		userID, ministryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking membership: %w", err)
	}
	return exists, nil
}

// CountByMinistry counts the members of a ministry
func (r *MembershipRepository) CountByMinistry(ctx context.Context, ministryID string) (int, error) {
	var count int
	err := r.database.Conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM ministry_members WHERE ministry_id = $1`, ministryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting members: %w", err)
	}
	return count, nil
}
