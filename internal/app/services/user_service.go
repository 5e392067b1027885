package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nishan/applygate/internal/app/models"
	"github.com/nishan/applygate/internal/app/models/dto"
	"github.com/nishan/applygate/internal/app/repositories"
	"github.com/nishan/applygate/internal/pkg/apperrors"
	"github.com/nishan/applygate/internal/pkg/auth"
)

// UserService handles profile and password operations
type UserService struct {
	userRepo         repositories.IUserRepository
	tokenRepo        repositories.ITokenRepository
	accountTokenRepo repositories.IAccountTokenRepository
	logger           zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	accountTokenRepo repositories.IAccountTokenRepository,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		accountTokenRepo: accountTokenRepo,
		logger:           logger,
	}
}

// GetProfile retrieves the authenticated user's profile
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user information: %w", err)
	}

	return dto.NewUserResponse(user), nil
}

// UpdateProfile applies the supplied fields to the user's profile.
// Absent fields keep their stored values.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user information: %w", err)
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.CompanyName != nil {
		user.CompanyName = *req.CompanyName
	}
	if req.PhoneNo != nil {
		user.PhoneNo = *req.PhoneNo
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	return dto.NewUserResponse(user), nil
}

// ChangePassword verifies the current password and stores a new one.
// All sessions and outstanding reset links are invalidated.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.NewBadRequestError("Passwords do not match")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user information: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.ErrWrongCurrentPassword
	}

	if auth.CheckPassword(user.Password, req.NewPassword) {
		return apperrors.ErrSamePassword
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	if err := s.accountTokenRepo.DeleteTokensByUser(ctx, userID, models.TokenPurposePasswordReset); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to clear reset tokens after password change")
	}
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to revoke sessions after password change")
	}

	return nil
}
