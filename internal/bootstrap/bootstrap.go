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

	appControllers "github.com/avillegas/examcore/internal/app/controllers"
	appMigrations "github.com/avillegas/examcore/internal/app/migrations"
	appRepos "github.com/avillegas/examcore/internal/app/repositories"
	appRoutes "github.com/avillegas/examcore/internal/app/routes"
	appServices "github.com/avillegas/examcore/internal/app/services"
	"github.com/avillegas/examcore/internal/config"
	"github.com/avillegas/examcore/internal/db"
	appMiddleware "github.com/avillegas/examcore/internal/middleware"
	pkgAuth "github.com/avillegas/examcore/internal/pkg/auth"
	"github.com/avillegas/examcore/internal/pkg/helpers"
	"github.com/avillegas/examcore/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          appServices.AuthService
	AssignmentService    appServices.ExamAssignmentService
	ResponseService      appServices.ExamResponseService
	AuthController       *appControllers.AuthController
	AssignmentController *appControllers.ExamAssignmentController
	ResponseController   *appControllers.ExamResponseController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Logger               zerolog.Logger
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
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		logger.ForService("auth"),
	)

	deps.AssignmentService = appServices.NewExamAssignmentService(
		deps.Repos.ExamRepository,
		deps.Repos.ExamAssignmentRepository,
		deps.Repos.ExamResponseRepository,
		deps.Repos.ExamRegradeRepository,
		deps.Repos.ExamQuestionRepository,
		deps.Repos.StudentRepository,
		deps.Repos.TeacherRepository,
		deps.Repos.TeacherSubjectRepository,
		database,
		logger.ForService("examAssignment"),
	)

	deps.ResponseService = appServices.NewExamResponseService(
		deps.Repos.ExamAssignmentRepository,
		deps.Repos.ExamResponseRepository,
		deps.Repos.ExamQuestionRepository,
		deps.Repos.ExamRepository,
		deps.Repos.StudentRepository,
		deps.Repos.TeacherRepository,
		deps.Repos.TeacherSubjectRepository,
		logger.ForService("examResponse"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.AssignmentController = appControllers.NewExamAssignmentController(deps.AssignmentService)
	deps.ResponseController = appControllers.NewExamResponseController(deps.ResponseService)

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
	router.Use(gin.Recovery())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AssignmentController,
		deps.ResponseController,
		deps.AuthMiddleware,
	)

	return router
}
