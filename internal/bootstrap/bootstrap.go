// Package bootstrap wires configuration, storage, services and HTTP routing.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/emrekaya/classline/internal/app/controllers"
	appMigrations "github.com/emrekaya/classline/internal/app/migrations"
	appModels "github.com/emrekaya/classline/internal/app/models"
	appRepos "github.com/emrekaya/classline/internal/app/repositories"
	appRoutes "github.com/emrekaya/classline/internal/app/routes"
	appServices "github.com/emrekaya/classline/internal/app/services"
	"github.com/emrekaya/classline/internal/config"
	"github.com/emrekaya/classline/internal/db"
	appMiddleware "github.com/emrekaya/classline/internal/middleware"
	pkgAuth "github.com/emrekaya/classline/internal/pkg/auth"
	"github.com/emrekaya/classline/internal/pkg/email"
	"github.com/emrekaya/classline/internal/pkg/helpers"
	"github.com/emrekaya/classline/internal/pkg/logger"
	"github.com/emrekaya/classline/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService            appServices.AuthService
	AccountService         appServices.AccountService
	ClassService           appServices.ClassService
	StudentService         appServices.StudentService
	MessagingService       appServices.MessagingService
	AuthController         *appControllers.AuthController
	AccountController      *appControllers.AccountController
	ClassController        *appControllers.ClassController
	StudentController      *appControllers.StudentController
	ConversationController *appControllers.ConversationController
	AuthMiddleware         *appMiddleware.AuthMiddleware
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	EmailService           email.EmailService
	Logger                 zerolog.Logger
}

// rosterStore joins the class and student repositories behind the single
// audience-resolution contract the messaging service expects.
type rosterStore struct {
	classes  *appRepos.ClassRepository
	students *appRepos.StudentRepository
}

func (r rosterStore) GetClassByID(ctx context.Context, schoolID, classID int64) (*appModels.Class, error) {
	return r.classes.GetByID(ctx, schoolID, classID)
}

func (r rosterStore) GetStudentByID(ctx context.Context, schoolID, studentID int64) (*appModels.Student, error) {
	return r.students.GetByID(ctx, schoolID, studentID)
}

func (r rosterStore) FindStudentsByClass(ctx context.Context, schoolID, classID int64) ([]appModels.Student, error) {
	return r.students.FindByClass(ctx, schoolID, classID)
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), database, lgr); err != nil {
		// Seeding failures are logged but never block startup.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	// Stale activation tokens accumulate between deploys; sweep them here
	// rather than carrying a scheduler for one query.
	if removed, err := deps.Repos.ActivationTokenRepository.DeleteExpired(context.Background()); err != nil {
		lgr.Warn().Err(err).Msg("Failed to sweep expired activation tokens")
	} else if removed > 0 {
		lgr.Info().Int64("removed", removed).Msg("Swept expired activation tokens")
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	activationTTL := helpers.ParseDuration(cfg.Activation.TokenTTL, 72*time.Hour)

	deps.EmailService = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		BaseURL:   cfg.SMTP.BaseURL,
		TokenTTL:  activationTTL,
	}, lgr)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.SchoolRepository,
		deps.Repos.UserRepository,
		deps.Repos.ActivationTokenRepository,
		database,
		deps.JWTService,
		deps.EmailService,
		lgr,
	)
	deps.AccountService = appServices.NewAccountService(
		deps.Repos.UserRepository,
		deps.Repos.ActivationTokenRepository,
		deps.EmailService,
		activationTTL,
		lgr,
	)
	deps.ClassService = appServices.NewClassService(deps.Repos.ClassRepository, deps.Repos.UserRepository, lgr)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.ClassRepository,
		deps.Repos.UserRepository,
		lgr,
	)
	deps.MessagingService = appServices.NewMessagingService(
		rosterStore{classes: deps.Repos.ClassRepository, students: deps.Repos.StudentRepository},
		deps.Repos.UserRepository,
		deps.Repos.ConversationRepository,
		database,
		nil,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.AccountController = appControllers.NewAccountController(deps.AccountService, lgr)
	deps.ClassController = appControllers.NewClassController(deps.ClassService, lgr)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService, lgr)
	deps.ConversationController = appControllers.NewConversationController(deps.MessagingService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger())
	router.Use(appMiddleware.ErrorHandlerMiddleware())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AccountController,
		deps.ClassController,
		deps.StudentController,
		deps.ConversationController,
		deps.AuthMiddleware,
	)

	return router
}
