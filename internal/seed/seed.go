package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	appModels "github.com/nishan/applygate/internal/app/models"
	appRepos "github.com/nishan/applygate/internal/app/repositories"
	"github.com/nishan/applygate/internal/config"
	"github.com/nishan/applygate/internal/db"
	"github.com/nishan/applygate/internal/pkg/apperrors"
	"github.com/nishan/applygate/internal/pkg/auth"
)

// CreateDefaultData creates the default admin account if it doesn't exist.
// Without admin credentials in the configuration nothing is seeded.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		lgr.Debug().Msg("No admin credentials configured, skipping admin seed")
		return nil
	}

	userRepo := appRepos.NewUserRepository(database.Pool)

	exists, err := userRepo.EmailExists(ctx, cfg.Admin.Email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking for existing admin account")
		return err
	}
	if exists {
		lgr.Debug().Str("email", cfg.Admin.Email).Msg("Admin account already exists")
		return nil
	}

	hashedPassword, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	fullName := cfg.Admin.FullName
	if fullName == "" {
		fullName = "Administrator"
	}

	admin := &appModels.User{
		Email:      cfg.Admin.Email,
		Password:   hashedPassword,
		FullName:   fullName,
		Role:       appModels.RoleAdmin,
		IsVerified: true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		// Another instance may have created it concurrently
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating admin account")
		return err
	}

	lgr.Info().Str("email", admin.Email).Msg("Default admin account created")
	return nil
}
