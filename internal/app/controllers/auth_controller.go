package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/app/services"
	"github.com/emrekaya/classline/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// RegisterSchool handles school self-registration
// @Summary Register a new school
// @Description Creates a school together with its first administrator account. The administrator can log in immediately.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterSchoolRequest true "School and administrator information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterSchoolResponse} "School registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /schools/register [post]
func (c *AuthController) RegisterSchool(ctx *gin.Context) {
	var req dto.RegisterSchoolRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.authService.RegisterSchool(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("school", req.SchoolName).Msg("School registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Login handles user authentication
// @Summary Log in
// @Description Authenticates an account by email and password and returns a signed access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Authenticated"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account is not active"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Activate consumes an activation token and sets the first password
// @Summary Activate an invited account
// @Description Consumes a one-time activation token sent by email and sets the account's password. The token is single use.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ActivateAccountRequest true "Activation token and new password"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Account activated"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired token"
// @Failure 409 {object} dto.ErrorResponse "Token already used"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/activate [post]
func (c *AuthController) Activate(ctx *gin.Context) {
	var req dto.ActivateAccountRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.authService.Activate(ctx.Request.Context(), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Account activated"}))
}
