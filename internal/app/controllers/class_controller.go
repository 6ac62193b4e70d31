package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/app/services"
	"github.com/emrekaya/classline/internal/middleware"
	"github.com/emrekaya/classline/internal/pkg/helpers"
)

// ClassController handles class administration
type ClassController struct {
	classService services.ClassService
	logger       zerolog.Logger
}

// NewClassController creates a new ClassController
func NewClassController(classService services.ClassService, logger zerolog.Logger) *ClassController {
	return &ClassController{
		classService: classService,
		logger:       logger,
	}
}

// Create adds a class to the caller's school
// @Summary Create a class
// @Description Creates a class within the caller's school. Admin or secretary only.
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClassRequest true "Class information"
// @Success 201 {object} dto.APIResponse{data=dto.ClassResponse} "Class created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Router /classes [post]
func (c *ClassController) Create(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateClassRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.classService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// List returns the classes of the caller's school
// @Summary List classes
// @Description Lists the classes of the caller's school. Admin or secretary only.
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ClassListResponse} "Classes"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Router /classes [get]
func (c *ClassController) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	classes, err := c.classService.List(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ClassListResponse{Classes: classes}))
}

// AssignTeacher sets the class teacher
// @Summary Assign a class teacher
// @Description Assigns a teacher account of the same school as the class teacher. Admin or secretary only.
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.AssignTeacherRequest true "Teacher assignment"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Teacher assigned"
// @Failure 400 {object} dto.ErrorResponse "Account is not a teacher"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Class or teacher not found"
// @Router /classes/{id}/teacher [put]
func (c *ClassController) AssignTeacher(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	classID, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid class identifier")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.AssignTeacherRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.classService.AssignTeacher(ctx.Request.Context(), actor, classID, req.TeacherID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Teacher assigned"}))
}
