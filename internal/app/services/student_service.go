package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	appauth "github.com/emrekaya/classline/internal/app/auth"
	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/app/repositories"
	"github.com/emrekaya/classline/internal/pkg/apperrors"
	"github.com/emrekaya/classline/internal/pkg/dberrors"
)

// StudentService defines the interface for student and guardian operations
type StudentService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	List(ctx context.Context, actor Actor, classID *int64) ([]dto.StudentResponse, error)
	Get(ctx context.Context, actor Actor, studentID int64) (*dto.StudentResponse, error)
	Move(ctx context.Context, actor Actor, studentID int64, classID *int64) error
	AddGuardian(ctx context.Context, actor Actor, studentID int64, req *dto.AddGuardianRequest) error
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	studentRepo *repositories.StudentRepository
	classRepo   *repositories.ClassRepository
	userRepo    *repositories.UserRepository
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo *repositories.StudentRepository,
	classRepo *repositories.ClassRepository,
	userRepo *repositories.UserRepository,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		classRepo:   classRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Create enrolls a student, optionally straight into a class
func (s *studentServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	if !appauth.Can(actor.Role, appauth.ActionManageRoster) {
		return nil, apperrors.NewForbiddenError("Role is not permitted to manage the roster")
	}

	if req.ClassID != nil {
		class, err := s.classRepo.GetByID(ctx, actor.SchoolID, *req.ClassID)
		if err != nil {
			return nil, err
		}
		if class == nil {
			return nil, apperrors.NewResourceNotFoundError("Class not found")
		}
	}

	student := &models.Student{
		SchoolID:  actor.SchoolID,
		ClassID:   req.ClassID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}

	if _, err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	resp := dto.ToStudentResponse(student)
	return &resp, nil
}

// List retrieves students of the actor's school, optionally by class
func (s *studentServiceImpl) List(ctx context.Context, actor Actor, classID *int64) ([]dto.StudentResponse, error) {
	if !appauth.Can(actor.Role, appauth.ActionManageRoster) {
		return nil, apperrors.NewForbiddenError("Role is not permitted to view the roster")
	}

	students, err := s.studentRepo.ListBySchool(ctx, actor.SchoolID, classID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		responses = append(responses, dto.ToStudentResponse(&students[i]))
	}
	return responses, nil
}

// Get retrieves one student with guardian links
func (s *studentServiceImpl) Get(ctx context.Context, actor Actor, studentID int64) (*dto.StudentResponse, error) {
	if !appauth.Can(actor.Role, appauth.ActionManageRoster) {
		return nil, apperrors.NewForbiddenError("Role is not permitted to view the roster")
	}

	student, err := s.studentRepo.GetByID(ctx, actor.SchoolID, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperrors.NewResourceNotFoundError("Student not found")
	}

	guardians, err := s.studentRepo.ListGuardians(ctx, studentID)
	if err != nil {
		return nil, err
	}
	student.Guardians = guardians

	resp := dto.ToStudentResponse(student)
	return &resp, nil
}

// Move places a student into a class, or removes the class assignment when
// classID is nil
func (s *studentServiceImpl) Move(ctx context.Context, actor Actor, studentID int64, classID *int64) error {
	if !appauth.Can(actor.Role, appauth.ActionManageRoster) {
		return apperrors.NewForbiddenError("Role is not permitted to manage the roster")
	}

	student, err := s.studentRepo.GetByID(ctx, actor.SchoolID, studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return apperrors.NewResourceNotFoundError("Student not found")
	}

	if classID != nil {
		class, err := s.classRepo.GetByID(ctx, actor.SchoolID, *classID)
		if err != nil {
			return err
		}
		if class == nil {
			return apperrors.NewResourceNotFoundError("Class not found")
		}
	}

	return s.studentRepo.SetClass(ctx, actor.SchoolID, studentID, classID)
}

// AddGuardian links a parent account to a student. A student carries at
// most two guardian links; the guardian must be a parent account of the
// same school.
func (s *studentServiceImpl) AddGuardian(ctx context.Context, actor Actor, studentID int64, req *dto.AddGuardianRequest) error {
	if !appauth.Can(actor.Role, appauth.ActionManageRoster) {
		return apperrors.NewForbiddenError("Role is not permitted to manage the roster")
	}

	student, err := s.studentRepo.GetByID(ctx, actor.SchoolID, studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return apperrors.NewResourceNotFoundError("Student not found")
	}

	guardian, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return err
	}
	if guardian == nil || guardian.SchoolID != actor.SchoolID {
		return apperrors.NewResourceNotFoundError("Guardian account not found")
	}
	if guardian.RoleType != models.RoleParent {
		return apperrors.NewCustomError(apperrors.ErrGuardianNotParent, "Guardian account must have the parent role")
	}

	count, err := s.studentRepo.CountGuardians(ctx, studentID)
	if err != nil {
		return err
	}
	if count >= models.MaxGuardiansPerStudent {
		return apperrors.NewCustomError(apperrors.ErrGuardianLimit, "Student already has two guardians")
	}

	link := &models.GuardianLink{
		StudentID: studentID,
		UserID:    req.UserID,
		Kinship:   strings.TrimSpace(req.Kinship),
	}

	if _, err := s.studentRepo.AddGuardian(ctx, link); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "guardian_links_student_id_user_id_key") {
			return apperrors.NewConflictError("Guardian already linked to this student")
		}
		return err
	}

	return nil
}
