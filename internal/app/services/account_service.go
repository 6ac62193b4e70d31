package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/emrekaya/classline/internal/app/auth"
	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/app/repositories"
	"github.com/emrekaya/classline/internal/pkg/apperrors"
	"github.com/emrekaya/classline/internal/pkg/auth"
	"github.com/emrekaya/classline/internal/pkg/dberrors"
	"github.com/emrekaya/classline/internal/pkg/email"
)

// AccountService defines the interface for staff-driven account management
type AccountService interface {
	Invite(ctx context.Context, actor Actor, req *dto.InviteAccountRequest) (*dto.UserResponse, error)
	List(ctx context.Context, actor Actor, role *models.RoleType) ([]dto.UserResponse, error)
	Deactivate(ctx context.Context, actor Actor, userID int64) error
	Me(ctx context.Context, actor Actor) (*dto.UserResponse, error)
}

// accountServiceImpl implements AccountService
type accountServiceImpl struct {
	userRepo  *repositories.UserRepository
	tokenRepo *repositories.ActivationTokenRepository
	mailer    email.EmailService
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	userRepo *repositories.UserRepository,
	tokenRepo *repositories.ActivationTokenRepository,
	mailer email.EmailService,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) AccountService {
	return &accountServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Invite creates an inactive account in the actor's school and sends the
// activation token. The account stays unusable until activation sets a
// password.
func (s *accountServiceImpl) Invite(ctx context.Context, actor Actor, req *dto.InviteAccountRequest) (*dto.UserResponse, error) {
	if !appauth.Can(actor.Role, appauth.ActionManageAccounts) {
		return nil, apperrors.NewForbiddenError("Role is not permitted to manage accounts")
	}

	role := models.RoleType(req.RoleType)
	if !role.Valid() {
		return nil, apperrors.NewValidationError("Unknown role type")
	}

	user := &models.User{
		SchoolID:  actor.SchoolID,
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleType:  role,
		IsActive:  false,
	}

	if _, err := s.userRepo.Create(ctx, nil, user); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return nil, apperrors.NewConflictError("Email already registered")
		}
		return nil, err
	}

	token, expiresAt := auth.NewActivationToken(s.tokenTTL)
	if err := s.tokenRepo.Create(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}

	if mailErr := s.mailer.SendActivationEmail(user.Email, user.FirstName, token); mailErr != nil {
		// The account exists; staff can trigger a new invitation later
		s.logger.Warn().Err(mailErr).Int64("userID", user.ID).Msg("Failed to send activation email")
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Str("role", string(role)).
		Msg("Account invited")

	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// List retrieves the accounts of the actor's school, optionally by role
func (s *accountServiceImpl) List(ctx context.Context, actor Actor, role *models.RoleType) ([]dto.UserResponse, error) {
	if !appauth.Can(actor.Role, appauth.ActionManageAccounts) {
		return nil, apperrors.NewForbiddenError("Role is not permitted to manage accounts")
	}

	users, err := s.userRepo.ListBySchool(ctx, actor.SchoolID, role)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.ToUserResponse(&users[i]))
	}
	return responses, nil
}

// Deactivate soft-disables an account in the actor's school. Deactivated
// guardians silently drop out of audience resolution; their history stays.
func (s *accountServiceImpl) Deactivate(ctx context.Context, actor Actor, userID int64) error {
	if !appauth.Can(actor.Role, appauth.ActionManageAccounts) {
		return apperrors.NewForbiddenError("Role is not permitted to manage accounts")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.SchoolID != actor.SchoolID {
		return apperrors.NewResourceNotFoundError("Account not found")
	}

	if user.ID == actor.UserID {
		return apperrors.NewBadRequestError("Cannot deactivate your own account")
	}

	return s.userRepo.SetActive(ctx, userID, false)
}

// Me returns the profile of the authenticated caller
func (s *accountServiceImpl) Me(ctx context.Context, actor Actor) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewResourceNotFoundError("Account not found")
	}

	resp := dto.ToUserResponse(user)
	return &resp, nil
}
