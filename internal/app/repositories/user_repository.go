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
)

var userColumns = []string{
	"u.id", "u.name", "u.email", "u.password", "u.phone", "COALESCE(u.cpf, '')", "COALESCE(u.rg, '')", "u.role", "u.status",
	"u.created_at", "u.updated_at",
	"a.user_id", "a.street", "a.number", "a.complement", "a.neighborhood", "a.city", "a.state", "a.zip_code",
}

// UserRepository handles database operations for users
type UserRepository struct {
	database *db.PostgresDB
	sb       squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{
		database: database,
		sb:       statementBuilder(),
	}
}

// Create inserts a user; the address is stored separately with SaveAddress
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	query := `
		INSERT INTO users (id, name, email, password, phone, cpf, rg, role, status)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.database.Conn(ctx).QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.Password, user.Phone, user.CPF, user.RG,
		string(user.Role), string(user.Status),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapUserWriteError(err)
	}

	return nil
}

// GetByID retrieves a user with its address
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

// GetByEmail retrieves a user by its normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.email": email})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).
		From("users u").
		LeftJoin("addresses a ON a.user_id = u.id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	user, err := scanUser(r.database.Conn(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// Update writes the scalar fields of a user, including the password hash
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password = $3, phone = $4, cpf = NULLIF($5, ''), rg = NULLIF($6, ''), role = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.database.Conn(ctx).QueryRow(ctx, query,
		user.Name, user.Email, user.Password, user.Phone, user.CPF, user.RG, string(user.Role), user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrUserNotFound
		}
		return mapUserWriteError(err)
	}
	return nil
}

// SetStatus changes the active flag of a user
func (r *UserRepository) SetStatus(ctx context.Context, id string, status models.UserStatus) error {
	cmdTag, err := r.database.Conn(ctx).Exec(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("error updating user status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user. Rows still referencing the user surface as a referential integrity error.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.database.Conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewReferentialIntegrityError("cannot delete: linked to schedules or other activity")
		}
		return fmt.Errorf("error deleting user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ListByRoles lists users holding any of roles, newest first
func (r *UserRepository) ListByRoles(ctx context.Context, roles []models.Role) ([]*models.User, error) {
	if len(roles) == 0 {
		return []*models.User{}, nil
	}

	query, args, err := r.sb.Select(userColumns...).
		From("users u").
		LeftJoin("addresses a ON a.user_id = u.id").
		Where(squirrel.Eq{"u.role": roleStrings(roles)}).
		OrderBy("u.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user list query: %w", err)
	}

	rows, err := r.database.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// CheckUniqueness returns the conflict error for the first of email, cpf or rg
// already held by a user other than excludeID.
func (r *UserRepository) CheckUniqueness(ctx context.Context, email, cpf, rg, excludeID string) error {
	// Empty cpf and rg are stored as NULL and never clash
	conditions := squirrel.Or{squirrel.Eq{"email": email}}
	if cpf != "" {
		conditions = append(conditions, squirrel.Eq{"cpf": cpf})
	}
	if rg != "" {
		conditions = append(conditions, squirrel.Eq{"rg": rg})
	}

	query, args, err := r.sb.Select("email", "COALESCE(cpf, '')", "COALESCE(rg, '')").
		From("users").
		Where(conditions).
		Where(squirrel.NotEq{"id": excludeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build uniqueness query: %w", err)
	}

	rows, err := r.database.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error checking user uniqueness: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var existingEmail, existingCPF, existingRG string
		if err := rows.Scan(&existingEmail, &existingCPF, &existingRG); err != nil {
			return fmt.Errorf("error scanning user uniqueness: %w", err)
		}
		switch {
		case existingEmail == email:
			return apperrors.ErrEmailAlreadyExists
		case cpf != "" && existingCPF == cpf:
			return apperrors.ErrCPFAlreadyExists
		case rg != "" && existingRG == rg:
			return apperrors.ErrRGAlreadyExists
		}
	}

	return rows.Err()
}

// CountExisting counts how many of ids belong to existing users
func (r *UserRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int
	err := r.database.Conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE id = ANY($1)`, ids).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return count, nil
}

// CountByRoleAndStatus counts users with the given role and status
func (r *UserRepository) CountByRoleAndStatus(ctx context.Context, role models.Role, status models.UserStatus) (int, error) {
	var count int
	err := r.database.Conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND status = $2`, string(role), string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return count, nil
}

// SaveAddress replaces the address of a user
func (r *UserRepository) SaveAddress(ctx context.Context, userID string, address *models.Address) error {
	query := `
		INSERT INTO addresses (user_id, street, number, complement, neighborhood, city, state, zip_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			street = EXCLUDED.street,
			number = EXCLUDED.number,
			complement = EXCLUDED.complement,
			neighborhood = EXCLUDED.neighborhood,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code
	`

	_, err := r.database.Conn(ctx).Exec(ctx, query,
		userID, address.Street, address.Number, address.Complement, address.Neighborhood,
		address.City, address.State, address.ZipCode,
	)
	if err != nil {
		return fmt.Errorf("error saving address: %w", err)
	}
	address.UserID = userID
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var role, status string
	var addrUserID, street, number, complement, neighborhood, city, state, zipCode pgtype.Text

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Phone, &user.CPF, &user.RG, &role, &status,
		&user.CreatedAt, &user.UpdatedAt,
		&addrUserID, &street, &number, &complement, &neighborhood, &city, &state, &zipCode,
	)
	if err != nil {
		return nil, err
	}

	user.Role = models.Role(role)
	user.Status = models.UserStatus(status)
	if addrUserID.Valid {
		user.Address = &models.Address{
			UserID:       addrUserID.String,
			Street:       street.String,
			Number:       number.String,
			Complement:   complement.String,
			Neighborhood: neighborhood.String,
			City:         city.String,
			State:        state.String,
			ZipCode:      zipCode.String,
		}
	}
	return &user, nil
}

func mapUserWriteError(err error) error {
	if constraint, ok := dberrors.UniqueViolation(err); ok {
		switch constraint {
		case "users_email_key":
			return apperrors.ErrEmailAlreadyExists
		case "users_cpf_key":
			return apperrors.ErrCPFAlreadyExists
		case "users_rg_key":
			return apperrors.ErrRGAlreadyExists
		}
		return apperrors.NewConflictError("user already exists")
	}
	return fmt.Errorf("error writing user: %w", err)
}
