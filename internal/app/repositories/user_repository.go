package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emrekaya/classline/internal/app/models"
)

const userColumns = `id, school_id, email, password, first_name, last_name, role_type, is_active, last_login_at, created_at, updated_at`

// UserRepository handles database operations for accounts
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.SchoolID,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&user.RoleType,
		&user.IsActive,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning user row: %w", err)
	}
	return &user, nil
}

// Create inserts a new account. When tx is nil the pool is used directly.
func (r *UserRepository) Create(ctx context.Context, tx pgx.Tx, user *models.User) (int64, error) {
	query := `
		INSERT INTO users (school_id, email, password, first_name, last_name, role_type, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	row := queryRow(r.db, tx, ctx, query,
		user.SchoolID,
		user.Email,
		user.Password,
		user.FirstName,
		user.LastName,
		user.RoleType,
		user.IsActive,
	)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return user.ID, nil
}

// FindByID retrieves an account by ID, nil when absent
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// FindByEmail retrieves an account by email across all tenants, nil when
// absent. Emails are globally unique.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// ListBySchool retrieves accounts of a school, optionally filtered by role
func (r *UserRepository) ListBySchool(ctx context.Context, schoolID int64, role *models.RoleType) ([]models.User, error) {
	queryBuilder := squirrel.Select(
		"id", "school_id", "email", "password", "first_name", "last_name",
		"role_type", "is_active", "last_login_at", "created_at", "updated_at",
	).
		From("users").
		Where("school_id = ?", schoolID).
		OrderBy("last_name, first_name").
		PlaceholderFormat(squirrel.Dollar)

	if role != nil {
		queryBuilder = queryBuilder.Where("role_type = ?", string(*role))
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// SetActive flips the soft active flag on an account
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("error updating user active flag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no user found with ID %d", id)
	}

	return nil
}

// ActivateWithPassword sets the password hash and active flag in one step,
// within the given transaction. Used by account activation.
func (r *UserRepository) ActivateWithPassword(ctx context.Context, tx pgx.Tx, id int64, passwordHash string) error {
	query := `UPDATE users SET password = $2, is_active = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := tx.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("error activating user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no user found with ID %d", id)
	}

	return nil
}

// UpdateLastLogin stamps the last successful login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, when time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, when)
	if err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// FindActiveGuardianIDs returns the account IDs of a student's guardians
// whose accounts are active. Inactive guardians are silently excluded.
func (r *UserRepository) FindActiveGuardianIDs(ctx context.Context, studentID int64) ([]int64, error) {
	query := `
		SELECT u.id
		FROM guardian_links gl
		JOIN users u ON u.id = gl.user_id
		WHERE gl.student_id = $1 AND u.is_active = TRUE
	`

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("error querying active guardians: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning guardian row: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guardian rows: %w", err)
	}

	return ids, nil
}
