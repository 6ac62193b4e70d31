package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/emrekaya/classline/internal/app/controllers"
	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	accountController *controllers.AccountController,
	classController *controllers.ClassController,
	studentController *controllers.StudentController,
	conversationController *controllers.ConversationController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/schools/register", authController.RegisterSchool)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/activate", authController.Activate)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/me", accountController.Me)

		// Account administration, admin and secretary only
		accounts := authenticated.Group("/accounts")
		accounts.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleSecretary))
		{
			accounts.POST("", accountController.Invite)
			accounts.GET("", accountController.List)
			accounts.POST("/:id/deactivate", accountController.Deactivate)
		}

		// Class roster, admin and secretary only. Reads included: guardian
		// links are not for other parents' eyes.
		classes := authenticated.Group("/classes")
		classes.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleSecretary))
		{
			classes.GET("", classController.List)
			classes.POST("", classController.Create)
			classes.PUT("/:id/teacher", classController.AssignTeacher)
		}

		// Student roster, admin and secretary only
		students := authenticated.Group("/students")
		students.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleSecretary))
		{
			students.GET("", studentController.List)
			students.GET("/:id", studentController.Get)
			students.POST("", studentController.Create)
			students.PUT("/:id/class", studentController.Move)
			students.POST("/:id/guardians", studentController.AddGuardian)
		}

		// Messaging. Creation and status checks happen in the service so a
		// parent gets a proper 403 instead of a missing route.
		conversations := authenticated.Group("/conversations")
		{
			conversations.POST("", conversationController.Create)
			conversations.GET("", conversationController.List)
			conversations.GET("/:id", conversationController.Get)
			conversations.POST("/:id/messages", conversationController.PostMessage)
			conversations.POST("/:id/read", conversationController.MarkRead)
			conversations.PUT("/:id/status", conversationController.SetStatus)
		}
	}
}
