package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emrekaya/classline/internal/app/models"
)

// StudentRepository handles database operations for students and their
// guardian links
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	query := `
		INSERT INTO students (school_id, class_id, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		student.SchoolID,
		student.ClassID,
		student.FirstName,
		student.LastName,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating student: %w", err)
	}

	return student.ID, nil
}

// GetByID retrieves a student scoped to a school, nil when absent in that tenant
func (r *StudentRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.Student, error) {
	query := `
		SELECT id, school_id, class_id, first_name, last_name, created_at, updated_at
		FROM students
		WHERE id = $1 AND school_id = $2
	`

	var student models.Student
	err := r.db.QueryRow(ctx, query, id, schoolID).Scan(
		&student.ID,
		&student.SchoolID,
		&student.ClassID,
		&student.FirstName,
		&student.LastName,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return &student, nil
}

// ListBySchool retrieves students of a school, optionally filtered by class
func (r *StudentRepository) ListBySchool(ctx context.Context, schoolID int64, classID *int64) ([]models.Student, error) {
	query := `
		SELECT id, school_id, class_id, first_name, last_name, created_at, updated_at
		FROM students
		WHERE school_id = $1 AND ($2::bigint IS NULL OR class_id = $2)
		ORDER BY last_name, first_name
	`

	rows, err := r.db.Query(ctx, query, schoolID, classID)
	if err != nil {
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

// FindByClass retrieves every student of a class, scoped to the school
func (r *StudentRepository) FindByClass(ctx context.Context, schoolID, classID int64) ([]models.Student, error) {
	query := `
		SELECT id, school_id, class_id, first_name, last_name, created_at, updated_at
		FROM students
		WHERE school_id = $1 AND class_id = $2
		ORDER BY last_name, first_name
	`

	rows, err := r.db.Query(ctx, query, schoolID, classID)
	if err != nil {
		return nil, fmt.Errorf("error querying class students: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

func collectStudents(rows pgx.Rows) ([]models.Student, error) {
	var students []models.Student
	for rows.Next() {
		var student models.Student
		err := rows.Scan(
			&student.ID,
			&student.SchoolID,
			&student.ClassID,
			&student.FirstName,
			&student.LastName,
			&student.CreatedAt,
			&student.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

// SetClass moves a student into a class, or out of any class when classID
// is nil. Scoped to the school.
func (r *StudentRepository) SetClass(ctx context.Context, schoolID, studentID int64, classID *int64) error {
	query := `UPDATE students SET class_id = $3, updated_at = NOW() WHERE id = $1 AND school_id = $2`

	result, err := r.db.Exec(ctx, query, studentID, schoolID, classID)
	if err != nil {
		return fmt.Errorf("error moving student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no student found with ID %d", studentID)
	}

	return nil
}

// CountGuardians returns the number of guardian links a student has
func (r *StudentRepository) CountGuardians(ctx context.Context, studentID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM guardian_links WHERE student_id = $1`, studentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting guardians: %w", err)
	}
	return count, nil
}

// AddGuardian links a parent account to a student
func (r *StudentRepository) AddGuardian(ctx context.Context, link *models.GuardianLink) (int64, error) {
	query := `
		INSERT INTO guardian_links (student_id, user_id, kinship)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, link.StudentID, link.UserID, link.Kinship).
		Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("error adding guardian link: %w", err)
	}

	return link.ID, nil
}

// ListGuardians retrieves a student's guardian links with guardian accounts
func (r *StudentRepository) ListGuardians(ctx context.Context, studentID int64) ([]models.GuardianLink, error) {
	query := `
		SELECT gl.id, gl.student_id, gl.user_id, gl.kinship, gl.created_at,
			u.id, u.school_id, u.email, u.first_name, u.last_name, u.role_type, u.is_active
		FROM guardian_links gl
		JOIN users u ON u.id = gl.user_id
		WHERE gl.student_id = $1
		ORDER BY gl.created_at
	`

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("error querying guardian links: %w", err)
	}
	defer rows.Close()

	var links []models.GuardianLink
	for rows.Next() {
		var link models.GuardianLink
		var guardian models.User
		err := rows.Scan(
			&link.ID,
			&link.StudentID,
			&link.UserID,
			&link.Kinship,
			&link.CreatedAt,
			&guardian.ID,
			&guardian.SchoolID,
			&guardian.Email,
			&guardian.FirstName,
			&guardian.LastName,
			&guardian.RoleType,
			&guardian.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning guardian link row: %w", err)
		}
		link.Guardian = &guardian
		links = append(links, link)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guardian link rows: %w", err)
	}

	return links, nil
}
