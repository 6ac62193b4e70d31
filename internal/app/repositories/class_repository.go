package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emrekaya/classline/internal/app/models"
)

// ClassRepository handles database operations for classes
type ClassRepository struct {
	db *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create inserts a new class
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) (int64, error) {
	query := `
		INSERT INTO classes (school_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, class.SchoolID, class.Name).
		Scan(&class.ID, &class.CreatedAt, &class.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating class: %w", err)
	}

	return class.ID, nil
}

// GetByID retrieves a class scoped to a school, nil when absent in that tenant
func (r *ClassRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.Class, error) {
	query := `
		SELECT id, school_id, name, teacher_id, created_at, updated_at
		FROM classes
		WHERE id = $1 AND school_id = $2
	`

	var class models.Class
	err := r.db.QueryRow(ctx, query, id, schoolID).Scan(
		&class.ID,
		&class.SchoolID,
		&class.Name,
		&class.TeacherID,
		&class.CreatedAt,
		&class.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving class: %w", err)
	}

	return &class, nil
}

// ListBySchool retrieves every class of a school
func (r *ClassRepository) ListBySchool(ctx context.Context, schoolID int64) ([]models.Class, error) {
	query := `
		SELECT id, school_id, name, teacher_id, created_at, updated_at
		FROM classes
		WHERE school_id = $1
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("error querying classes: %w", err)
	}
	defer rows.Close()

	var classes []models.Class
	for rows.Next() {
		var class models.Class
		err := rows.Scan(
			&class.ID,
			&class.SchoolID,
			&class.Name,
			&class.TeacherID,
			&class.CreatedAt,
			&class.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning class row: %w", err)
		}
		classes = append(classes, class)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating class rows: %w", err)
	}

	return classes, nil
}

// AssignTeacher sets the class teacher, scoped to the school
func (r *ClassRepository) AssignTeacher(ctx context.Context, schoolID, classID, teacherID int64) error {
	query := `UPDATE classes SET teacher_id = $3, updated_at = NOW() WHERE id = $1 AND school_id = $2`

	result, err := r.db.Exec(ctx, query, classID, schoolID, teacherID)
	if err != nil {
		return fmt.Errorf("error assigning teacher: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no class found with ID %d", classID)
	}

	return nil
}
