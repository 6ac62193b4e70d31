package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emrekaya/classline/internal/app/models"
)

// SchoolRepository handles database operations for schools (tenants)
type SchoolRepository struct {
	db *pgxpool.Pool
}

// NewSchoolRepository creates a new SchoolRepository
func NewSchoolRepository(db *pgxpool.Pool) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// Create inserts a new school within the given transaction
func (r *SchoolRepository) Create(ctx context.Context, tx pgx.Tx, school *models.School) (int64, error) {
	query := `
		INSERT INTO schools (name, city)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query, school.Name, school.City).
		Scan(&school.ID, &school.CreatedAt, &school.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating school: %w", err)
	}

	return school.ID, nil
}

// Count returns the number of registered schools
func (r *SchoolRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM schools`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting schools: %w", err)
	}
	return count, nil
}
