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
)

// ClassService defines the interface for class operations
type ClassService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateClassRequest) (*dto.ClassResponse, error)
	List(ctx context.Context, actor Actor) ([]dto.ClassResponse, error)
	AssignTeacher(ctx context.Context, actor Actor, classID, teacherID int64) error
}

// classServiceImpl implements ClassService
type classServiceImpl struct {
	classRepo *repositories.ClassRepository
	userRepo  *repositories.UserRepository
	logger    zerolog.Logger
}

// NewClassService creates a new ClassService
func NewClassService(classRepo *repositories.ClassRepository, userRepo *repositories.UserRepository, logger zerolog.Logger) ClassService {
	return &classServiceImpl{
		classRepo: classRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// Create adds a class to the actor's school
func (s *classServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	if !appauth.Can(actor.Role, appauth.ActionManageRoster) {
		return nil, apperrors.NewForbiddenError("Role is not permitted to manage the roster")
	}

	class := &models.Class{
		SchoolID: actor.SchoolID,
		Name:     strings.TrimSpace(req.Name),
	}

	if _, err := s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}

	resp := dto.ToClassResponse(class)
	return &resp, nil
}

// List retrieves the classes of the actor's school
func (s *classServiceImpl) List(ctx context.Context, actor Actor) ([]dto.ClassResponse, error) {
	if !appauth.Can(actor.Role, appauth.ActionManageRoster) {
		return nil, apperrors.NewForbiddenError("Role is not permitted to view the roster")
	}

	classes, err := s.classRepo.ListBySchool(ctx, actor.SchoolID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		responses = append(responses, dto.ToClassResponse(&classes[i]))
	}
	return responses, nil
}

// AssignTeacher sets the single teacher of a class. The assignee must be a
// teacher account in the same school.
func (s *classServiceImpl) AssignTeacher(ctx context.Context, actor Actor, classID, teacherID int64) error {
	if !appauth.Can(actor.Role, appauth.ActionManageRoster) {
		return apperrors.NewForbiddenError("Role is not permitted to manage the roster")
	}

	class, err := s.classRepo.GetByID(ctx, actor.SchoolID, classID)
	if err != nil {
		return err
	}
	if class == nil {
		return apperrors.NewResourceNotFoundError("Class not found")
	}

	teacher, err := s.userRepo.FindByID(ctx, teacherID)
	if err != nil {
		return err
	}
	if teacher == nil || teacher.SchoolID != actor.SchoolID {
		return apperrors.NewResourceNotFoundError("Teacher not found")
	}
	if teacher.RoleType != models.RoleTeacher {
		return apperrors.NewValidationError("Assignee must have the teacher role")
	}

	return s.classRepo.AssignTeacher(ctx, actor.SchoolID, classID, teacherID)
}
