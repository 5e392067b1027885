// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nishan/applygate/internal/app/models/dto"
	"github.com/nishan/applygate/internal/app/services"
	"github.com/nishan/applygate/internal/middleware"
	"github.com/nishan/applygate/internal/pkg/apperrors"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a new documentation officer account. Registration requires email verification.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "Registration initiated. Check email for verification link."
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Failure 409 {object} dto.APIResponse "Email already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /users/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	registerResponse, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Error().Err(err).Str("email", req.Email).Msg("Failed to register user")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("email", req.Email).Msg("User registration initiated, verification email sent")

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(registerResponse, registerResponse.Message))
}

// VerifyEmail handles email verification
// @Summary Verify email address
// @Description Verifies a user's email address using the single-use token from the verification link
// @Tags users
// @Produce json
// @Param uid path int true "User ID"
// @Param token path string true "Verification token"
// @Success 200 {object} dto.APIResponse "Email verified successfully"
// @Failure 400 {object} dto.APIResponse "Invalid or expired token"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /users/verify-email/{uid}/{token} [get]
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("uid"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid user ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	token := ctx.Param("token")

	err = c.authService.VerifyEmail(ctx.Request.Context(), userID, token)
	if err != nil {
		// Re-verification of an already verified account is not an error
		if errors.Is(err, apperrors.ErrEmailAlreadyVerified) {
			ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Email is already verified. You can log in to your account."))
			return
		}
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Email verification failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", userID).Msg("Email verified successfully")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Email verified successfully. You can now log in to your account."))
}

// Login handles user login
// @Summary User login
// @Description Authenticates a verified user and returns an access/refresh token pair
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 403 {object} dto.APIResponse "Email not verified"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /users/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	loginResponse, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("email", req.Email).Msg("User logged in successfully")

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(loginResponse, "Login successful"))
}

// RefreshToken handles refresh token request
// @Summary Refresh access token
// @Description Rotates the refresh token and returns a new token pair
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Token refreshed successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Failure 401 {object} dto.APIResponse "Invalid refresh token"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /users/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid refresh token request payload")
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	tokenResponse, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Refresh token failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tokenResponse, "Token refreshed successfully"))
}

// ForgotPassword handles password reset requests
// @Summary Request a password reset
// @Description Sends a password reset link. The response is the same whether or not the email exists.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.APIResponse "Reset email dispatched if the account exists"
// @Failure 400 {object} dto.APIResponse "Invalid request format"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /users/forgot-password [post]
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid forgot password request payload")
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.authService.ForgotPassword(ctx.Request.Context(), req.Email); err != nil {
		c.logger.Error().Err(err).Msg("Failed to process password reset request")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil,
		"If an account with that email exists, a password reset link has been sent."))
}

// ResetPassword handles password reset with a token
// @Summary Reset password
// @Description Sets a new password using the single-use token from the reset link
// @Tags users
// @Accept json
// @Produce json
// @Param uid path int true "User ID"
// @Param token path string true "Reset token"
// @Param request body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.APIResponse "Password reset successfully"
// @Failure 400 {object} dto.APIResponse "Invalid request or expired token"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /users/reset-password/{uid}/{token} [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("uid"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid user ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	token := ctx.Param("token")

	var req dto.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid reset password request payload")
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	message, err := c.authService.ResetPassword(ctx.Request.Context(), userID, token, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Password reset failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", userID).Msg("Password reset successfully")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, message))
}
