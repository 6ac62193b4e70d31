package services

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/pkg/apperrors"
	"github.com/emrekaya/classline/internal/pkg/auth"
	"github.com/emrekaya/classline/internal/pkg/dberrors"
	"github.com/emrekaya/classline/internal/pkg/email"
)

// AuthService defines the interface for authentication and account lifecycle
type AuthService interface {
	RegisterSchool(ctx context.Context, req *dto.RegisterSchoolRequest) (*dto.RegisterSchoolResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Activate(ctx context.Context, req *dto.ActivateAccountRequest) error
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	schoolRepo SchoolStore
	userRepo   AccountStore
	tokenRepo  ActivationTokenStore
	tx         TxRunner
	jwtService *auth.JWTService
	mailer     email.EmailService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	schoolRepo SchoolStore,
	userRepo AccountStore,
	tokenRepo ActivationTokenStore,
	tx TxRunner,
	jwtService *auth.JWTService,
	mailer email.EmailService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		schoolRepo: schoolRepo,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		tx:         tx,
		jwtService: jwtService,
		mailer:     mailer,
		logger:     logger,
	}
}

// RegisterSchool creates the school and its first administrator account in
// one transaction. The administrator chooses a password up front, so the
// account is active immediately.
func (s *authServiceImpl) RegisterSchool(ctx context.Context, req *dto.RegisterSchoolRequest) (*dto.RegisterSchoolResponse, error) {
	existing, err := s.userRepo.FindByEmail(ctx, strings.ToLower(req.AdminEmail))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("Email already registered")
	}

	hash, err := auth.HashPassword(req.AdminPassword)
	if err != nil {
		return nil, err
	}

	school := &models.School{
		Name: strings.TrimSpace(req.SchoolName),
		City: strings.TrimSpace(req.City),
	}
	admin := &models.User{
		Email:     strings.ToLower(req.AdminEmail),
		Password:  hash,
		FirstName: req.AdminFirstName,
		LastName:  req.AdminLastName,
		RoleType:  models.RoleAdmin,
		IsActive:  true,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.schoolRepo.Create(ctx, tx, school); err != nil {
			return err
		}
		admin.SchoolID = school.ID
		_, err := s.userRepo.Create(ctx, tx, admin)
		return err
	})
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return nil, apperrors.NewConflictError("Email already registered")
		}
		s.logger.Error().Err(err).Str("school", req.SchoolName).Msg("Failed to register school")
		return nil, apperrors.NewPersistenceError(err)
	}

	s.logger.Info().
		Int64("schoolID", school.ID).
		Int64("adminID", admin.ID).
		Msg("School registered")

	return &dto.RegisterSchoolResponse{SchoolID: school.ID, AdminID: admin.ID}, nil
}

// Login verifies credentials and issues an access token
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" || !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		// Non-fatal; the login itself succeeded
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	}

	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: expiresIn,
		User:      dto.ToUserResponse(user),
	}, nil
}

// Activate consumes a one-time activation token and sets the account's
// first password, flipping the account active. A token can be consumed
// exactly once; expiry and reuse are rejected.
func (s *authServiceImpl) Activate(ctx context.Context, req *dto.ActivateAccountRequest) error {
	tokenRow, err := s.tokenRepo.FindByToken(ctx, req.Token)
	if err != nil {
		return err
	}
	if tokenRow == nil {
		return apperrors.ErrTokenInvalid
	}
	if tokenRow.UsedAt != nil {
		return apperrors.ErrTokenUsed
	}
	if auth.TokenExpired(tokenRow.ExpiresAt) {
		return apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, tokenRow.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		consumed, err := s.tokenRepo.MarkUsed(ctx, tx, tokenRow.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return apperrors.ErrTokenUsed
		}
		return s.userRepo.ActivateWithPassword(ctx, tx, user.ID, hash)
	})
	if err != nil {
		return err
	}

	if mailErr := s.mailer.SendWelcomeEmail(user.Email, user.FirstName); mailErr != nil {
		s.logger.Warn().Err(mailErr).Int64("userID", user.ID).Msg("Failed to send welcome email")
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Account activated")
	return nil
}
