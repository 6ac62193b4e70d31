package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/app/services"
	"github.com/emrekaya/classline/internal/middleware"
	"github.com/emrekaya/classline/internal/pkg/helpers"
)

// StudentController handles student roster administration
type StudentController struct {
	studentService services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// Create enrolls a student
// @Summary Enroll a student
// @Description Enrolls a student in the caller's school, optionally into a class. Admin or secretary only.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse} "Student enrolled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /students [post]
func (c *StudentController) Create(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	resp, err := c.studentService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// List returns the students of the caller's school
// @Summary List students
// @Description Lists the students of the caller's school, optionally filtered by class. Admin or secretary only.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Filter by class"
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse} "Students"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Router /students [get]
func (c *StudentController) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var classFilter *int64
	if raw := ctx.Query("classId"); raw != "" {
		classID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || classID <= 0 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid class filter")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		classFilter = &classID
	}

	students, err := c.studentService.List(ctx.Request.Context(), actor, classFilter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.StudentListResponse{Students: students}))
}

// Get returns one student with guardians
// @Summary Get a student
// @Description Returns a student of the caller's school together with the linked guardian accounts. Admin or secretary only.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	studentID, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student identifier")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.studentService.Get(ctx.Request.Context(), actor, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Move places a student into a class or removes the class assignment
// @Summary Move a student between classes
// @Description Moves a student into the given class, or removes the class assignment when classId is null. Admin or secretary only.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.MoveStudentRequest true "Target class"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Student moved"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Student or class not found"
// @Router /students/{id}/class [put]
func (c *StudentController) Move(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	studentID, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student identifier")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.MoveStudentRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.studentService.Move(ctx.Request.Context(), actor, studentID, req.ClassID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Student moved"}))
}

// AddGuardian links a parent account to a student
// @Summary Link a guardian
// @Description Links a parent account of the same school to a student. A student holds at most two guardian links. Admin or secretary only.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.AddGuardianRequest true "Guardian link"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse} "Guardian linked"
// @Failure 400 {object} dto.ErrorResponse "Account is not a parent"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 409 {object} dto.ErrorResponse "Guardian limit reached or link exists"
// @Router /students/{id}/guardians [post]
func (c *StudentController) AddGuardian(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	studentID, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student identifier")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.AddGuardianRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	if err := c.studentService.AddGuardian(ctx.Request.Context(), actor, studentID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.MessageResponse{Message: "Guardian linked"}))
}
