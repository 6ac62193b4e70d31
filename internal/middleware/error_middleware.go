package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/pkg/apperrors"
	"github.com/emrekaya/classline/internal/pkg/logger"
)

// ErrorHandlerMiddleware catches panics and turns them into a 500 response
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
			}
		}()
		c.Next()
	}
}

// HandleAPIError maps service-layer errors onto HTTP responses. Every
// controller funnels its error path through here so codes stay uniform.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrConversationAccess):
		// Missing, foreign and non-member conversations all answer 403 so
		// probing cannot reveal which conversations exist.
		respond(c, http.StatusForbidden, dto.ErrorCodeForbidden, "You do not have access to this conversation")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrEmptyAudience):
		respond(c, http.StatusUnprocessableEntity, dto.ErrorCodeEmptyAudience, "Audience has no active recipients")
	case errors.Is(err, apperrors.ErrConversationClosed):
		respond(c, http.StatusConflict, dto.ErrorCodeConversationClosed, "Conversation is closed")
	case errors.Is(err, apperrors.ErrGuardianLimit):
		respond(c, http.StatusConflict, dto.ErrorCodeConflict, "Student already has the maximum number of guardians")
	case errors.Is(err, apperrors.ErrGuardianNotParent):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Guardian account must have the parent role")
	case errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrSchoolNotFound),
		errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrClassNotFound):
		respond(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrAccountDisabled), errors.Is(err, apperrors.ErrAccountNotActive):
		respond(c, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is not active")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenUsed):
		respond(c, http.StatusConflict, dto.ErrorCodeTokenUsed, "Token already used")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		respondWithDetails(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", err)
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrResourceAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists")
	case errors.Is(err, apperrors.ErrPersistence):
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Storage failure")
		respond(c, http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Storage failure")
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		respond(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func respond(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

func respondWithDetails(c *gin.Context, status int, code dto.ErrorCode, message string, err error) {
	errorDetail := dto.NewErrorDetail(code, message)
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		errorDetail = errorDetail.WithDetails(customErr.Message)
	}
	c.JSON(status, dto.NewErrorResponse(errorDetail))
}
