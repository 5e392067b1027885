package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nishan/applygate/internal/app/controllers"
	appMigrations "github.com/nishan/applygate/internal/app/migrations"
	appRepos "github.com/nishan/applygate/internal/app/repositories"
	appRoutes "github.com/nishan/applygate/internal/app/routes"
	"github.com/nishan/applygate/internal/app/services"
	"github.com/nishan/applygate/internal/config"
	"github.com/nishan/applygate/internal/db"
	"github.com/nishan/applygate/internal/middleware"
	"github.com/nishan/applygate/internal/pkg/auth"
	"github.com/nishan/applygate/internal/pkg/email"
	"github.com/nishan/applygate/internal/pkg/filestorage"
	"github.com/nishan/applygate/internal/pkg/helpers"
	"github.com/nishan/applygate/internal/pkg/logger"
	"github.com/nishan/applygate/internal/seed"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Repos               *appRepos.Repositories
	FileStorage         filestorage.FileStorage
	JWTService          *auth.JWTService
	Mailer              email.EmailService
	AuthService         *services.AuthService
	UserService         *services.UserService
	ApplicantService    *services.ApplicantService
	AuthMiddleware      *middleware.AuthMiddleware
	AuthController      *controllers.AuthController
	UserController      *controllers.UserController
	ApplicantController *controllers.ApplicantController
}

// LoadConfigAndSetupLogger loads the application configuration and
// configures the global logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	// A missing .env file is not an error; values fall back to the
	// config file and defaults.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: cfg.Logging.Format == "console",
	})
	lgr := log.Logger

	lgr.Info().
		Str("port", cfg.Server.Port).
		Str("mode", cfg.Server.Mode).
		Msg("Configuration loaded")

	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL, applies pending migrations and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDirectory("migrations"); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Seeding failures should not prevent startup
	if err := seed.CreateDefaultData(ctx, database, cfg, lgr); err != nil {
		lgr.Warn().Err(err).Msg("Failed to seed default data")
	}

	return database, nil
}

// BuildDependencies constructs repositories, services, middleware and
// controllers from the configuration and database connection.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	repos := appRepos.NewRepositories(database)

	storage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	mailer := email.NewEmailService(email.SendGridConfig{
		APIKey:      cfg.Mail.SendGridAPIKey,
		FromName:    cfg.Mail.FromName,
		FromEmail:   cfg.Mail.FromEmail,
		FrontendURL: cfg.Server.FrontendURL,
	}, lgr)

	tokenTTL := helpers.ParseDuration(cfg.Mail.TokenExpiration, 24*time.Hour)
	mediaBaseURL := cfg.Server.BaseURL + "/uploads"

	authService := services.NewAuthService(
		repos.UserRepository,
		repos.TokenRepository,
		repos.AccountTokenRepository,
		jwtService,
		mailer,
		tokenTTL,
		lgr,
	)
	userService := services.NewUserService(
		repos.UserRepository,
		repos.TokenRepository,
		repos.AccountTokenRepository,
		lgr,
	)
	applicantService := services.NewApplicantService(
		repos.ApplicantRepository,
		storage,
		mediaBaseURL,
		lgr,
	)

	authMiddleware := middleware.NewAuthMiddleware(jwtService, repos.UserRepository)

	return &Dependencies{
		Repos:               repos,
		FileStorage:         storage,
		JWTService:          jwtService,
		Mailer:              mailer,
		AuthService:         authService,
		UserService:         userService,
		ApplicantService:    applicantService,
		AuthMiddleware:      authMiddleware,
		AuthController:      controllers.NewAuthController(authService, lgr),
		UserController:      controllers.NewUserController(userService, lgr),
		ApplicantController: controllers.NewApplicantController(applicantService, lgr),
	}, nil
}

// SetupRouter configures the Gin engine and registers all routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	appRoutes.SetupRouter(
		router,
		deps.AuthController,
		deps.UserController,
		deps.ApplicantController,
		deps.AuthMiddleware,
	)

	return router
}
