// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/app/services"
	"github.com/emrekaya/classline/internal/middleware"
)

// currentActor rebuilds the caller identity stored by the auth middleware.
// Returns false and answers the request when the identity is incomplete.
func currentActor(ctx *gin.Context) (services.Actor, bool) {
	userID, okUser := ctx.Get(middleware.ContextUserID)
	schoolID, okSchool := ctx.Get(middleware.ContextSchoolID)
	roleType, okRole := ctx.Get(middleware.ContextRoleType)
	if !okUser || !okSchool || !okRole {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return services.Actor{}, false
	}

	userIDInt, okUser := userID.(int64)
	schoolIDInt, okSchool := schoolID.(int64)
	roleStr, okRole := roleType.(string)
	if !okUser || !okSchool || !okRole {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
		return services.Actor{}, false
	}

	return services.Actor{
		UserID:   userIDInt,
		SchoolID: schoolIDInt,
		Role:     models.RoleType(roleStr),
	}, true
}
