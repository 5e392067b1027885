package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nishan/applygate/internal/app/models"
	"github.com/nishan/applygate/internal/app/models/dto"
	"github.com/nishan/applygate/internal/app/repositories"
	"github.com/nishan/applygate/internal/pkg/apperrors"
	"github.com/nishan/applygate/internal/pkg/auth"
	"github.com/nishan/applygate/internal/pkg/email"
)

// AuthService handles registration, login, and token flows
type AuthService struct {
	userRepo         repositories.IUserRepository
	tokenRepo        repositories.ITokenRepository
	accountTokenRepo repositories.IAccountTokenRepository
	jwtService       *auth.JWTService
	mailer           email.EmailService
	tokenTTL         time.Duration
	logger           zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	accountTokenRepo repositories.IAccountTokenRepository,
	jwtService *auth.JWTService,
	mailer email.EmailService,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		accountTokenRepo: accountTokenRepo,
		jwtService:       jwtService,
		mailer:           mailer,
		tokenTTL:         tokenTTL,
		logger:           logger,
	}
}

// Register creates a new unverified documentation officer account and
// dispatches a verification email.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.NewBadRequestError("Passwords do not match")
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:       req.Email,
		Password:    hashedPassword,
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
		PhoneNo:     req.PhoneNo,
		Role:        models.RoleDocumentationOfficer,
		IsVerified:  false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration with the same email surfaces here as
		// a unique violation
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	// The account exists at this point, so a mail failure is reported in
	// the 201 body rather than failing the registration
	if err := s.sendVerificationEmail(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send verification email")
		return &dto.RegisterResponse{
			Message: "User created but failed to send verification email. Please contact support.",
			Email:   user.Email,
		}, nil
	}

	return &dto.RegisterResponse{
		Message: "Registration successful. Please check your email to verify your account.",
		Email:   user.Email,
	}, nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *models.User) error {
	token, err := email.GenerateToken()
	if err != nil {
		return fmt.Errorf("token generation error: %w", err)
	}

	expiry := time.Now().Add(s.tokenTTL)
	if err := s.accountTokenRepo.CreateToken(ctx, user.ID, token, models.TokenPurposeEmailVerification, expiry); err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}

	return s.mailer.SendVerificationEmail(user.Email, user.FullName, user.ID, token)
}

// VerifyEmail marks a user's email as verified using a single-use token.
// Verifying an already verified account succeeds without consuming the token.
func (s *AuthService) VerifyEmail(ctx context.Context, userID int64, token string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrInvalidEmailToken
		}
		return fmt.Errorf("failed to get user information: %w", err)
	}

	if user.IsVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	accountToken, err := s.accountTokenRepo.GetToken(ctx, userID, token, models.TokenPurposeEmailVerification)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return apperrors.ErrInvalidEmailToken
		}
		return fmt.Errorf("token validation error: %w", err)
	}

	if accountToken.UsedAt != nil || accountToken.ExpiryDate.Before(time.Now()) {
		return apperrors.ErrInvalidEmailToken
	}

	if err := s.accountTokenRepo.MarkTokenAsUsed(ctx, accountToken.ID); err != nil {
		return fmt.Errorf("error consuming verification token: %w", err)
	}

	if err := s.userRepo.MarkVerified(ctx, userID); err != nil {
		return fmt.Errorf("error marking user verified: %w", err)
	}

	return nil
}

// Login authenticates a user and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user information: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	tokens, err := s.generateTokenResponse(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		User:   dto.NewUserResponse(user),
		Tokens: tokens,
	}, nil
}

// RefreshToken rotates a refresh token and issues a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, _, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) ||
			errors.Is(err, apperrors.ErrTokenExpired) ||
			errors.Is(err, apperrors.ErrTokenRevoked) {
			return nil, err
		}
		return nil, fmt.Errorf("token validation error: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// Rotate: the presented token must not be reusable
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateTokenResponse(ctx, user)
}

// ForgotPassword dispatches a password reset email. The outcome is the
// same whether or not the email belongs to an account.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Str("email", emailAddr).Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to get user information: %w", err)
	}

	// Any previously issued reset links stop working
	if err := s.accountTokenRepo.DeleteTokensByUser(ctx, user.ID, models.TokenPurposePasswordReset); err != nil {
		return fmt.Errorf("error clearing old reset tokens: %w", err)
	}

	token, err := email.GenerateToken()
	if err != nil {
		return fmt.Errorf("token generation error: %w", err)
	}

	expiry := time.Now().Add(s.tokenTTL)
	if err := s.accountTokenRepo.CreateToken(ctx, user.ID, token, models.TokenPurposePasswordReset, expiry); err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, user.FullName, user.ID, token); err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send password reset email")
		return apperrors.ErrMailDispatchFailed
	}

	return nil
}

// ResetPassword sets a new password using a single-use reset token and
// revokes all existing sessions. The
// returned message reflects whether the confirmation email went out; the
// reset itself is never rolled back on a mail failure.
func (s *AuthService) ResetPassword(ctx context.Context, userID int64, token string, req *dto.ResetPasswordRequest) (string, error) {
	if req.Password != req.ConfirmPassword {
		return "", apperrors.NewBadRequestError("Passwords do not match")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.ErrInvalidPasswordResetToken
		}
		return "", fmt.Errorf("failed to get user information: %w", err)
	}

	accountToken, err := s.accountTokenRepo.GetToken(ctx, userID, token, models.TokenPurposePasswordReset)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return "", apperrors.ErrInvalidPasswordResetToken
		}
		return "", fmt.Errorf("token validation error: %w", err)
	}

	if accountToken.UsedAt != nil || accountToken.ExpiryDate.Before(time.Now()) {
		return "", apperrors.ErrInvalidPasswordResetToken
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.accountTokenRepo.MarkTokenAsUsed(ctx, accountToken.ID); err != nil {
		return "", fmt.Errorf("error consuming reset token: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return "", fmt.Errorf("error updating password: %w", err)
	}

	// A password change invalidates every outstanding reset link and session
	if err := s.accountTokenRepo.DeleteTokensByUser(ctx, userID, models.TokenPurposePasswordReset); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to clear reset tokens after password reset")
	}
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to revoke sessions after password reset")
	}

	if err := s.mailer.SendPasswordChangedEmail(user.Email, user.FullName); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send password changed notification")
		return "Password has been reset, but the confirmation email could not be sent.", nil
	}

	return "Password has been reset successfully. You can now log in with your new password.", nil
}

// generateTokenResponse creates token response
func (s *AuthService) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	tokenExpiry := s.jwtService.GetRefreshTokenExpiry()

	if err := s.tokenRepo.CreateToken(ctx, refreshToken, user.ID, tokenExpiry); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		TokenType:             "Bearer",
		ExpiresIn:             expiresIn,
		RefreshTokenExpiresIn: refreshExpiresIn,
	}, nil
}
