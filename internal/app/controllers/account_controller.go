package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/app/services"
	"github.com/emrekaya/classline/internal/middleware"
	"github.com/emrekaya/classline/internal/pkg/helpers"
)

// AccountController handles staff and parent account administration
type AccountController struct {
	accountService services.AccountService
	logger         zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(accountService services.AccountService, logger zerolog.Logger) *AccountController {
	return &AccountController{
		accountService: accountService,
		logger:         logger,
	}
}

// Invite creates an inactive account and mails an activation token
// @Summary Invite an account
// @Description Creates an inactive account within the caller's school and emails a one-time activation link. Admin or secretary only.
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InviteAccountRequest true "Account information"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "Account invited"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /accounts [post]
func (c *AccountController) Invite(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.InviteAccountRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.accountService.Invite(ctx.Request.Context(), actor, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Account invitation failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// List returns the accounts of the caller's school
// @Summary List accounts
// @Description Lists the accounts of the caller's school, optionally filtered by role.
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role" Enums(ADMIN, SECRETARY, TEACHER, PARENT, STUDENT)
// @Success 200 {object} dto.APIResponse{data=dto.AccountListResponse} "Accounts"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Router /accounts [get]
func (c *AccountController) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var roleFilter *models.RoleType
	if raw := ctx.Query("role"); raw != "" {
		role := models.RoleType(raw)
		if !role.Valid() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid role filter")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		roleFilter = &role
	}

	accounts, err := c.accountService.List(ctx.Request.Context(), actor, roleFilter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.AccountListResponse{Accounts: accounts}))
}

// Me returns the authenticated caller's profile
// @Summary Get own profile
// @Description Returns the profile of the authenticated account.
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Profile"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /me [get]
func (c *AccountController) Me(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	resp, err := c.accountService.Me(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Deactivate disables an account
// @Summary Deactivate an account
// @Description Disables an account of the caller's school. Deactivated accounts cannot log in and are excluded from recipient resolution.
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Account deactivated"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /accounts/{id}/deactivate [post]
func (c *AccountController) Deactivate(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	userID, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid account identifier")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.accountService.Deactivate(ctx.Request.Context(), actor, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Account deactivated"}))
}
