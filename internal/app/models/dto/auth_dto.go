package dto

import (
	"time"

	"github.com/nishan/applygate/internal/app/models"
)

// RegisterRequest represents an account registration request
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	FullName        string `json:"full_name" binding:"required"`
	CompanyName     string `json:"company_name"`
	PhoneNo         string `json:"phone_no"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents an issued access/refresh token pair
type TokenResponse struct {
	AccessToken           string `json:"access"`
	RefreshToken          string `json:"refresh"`
	TokenType             string `json:"token_type" example:"Bearer"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_expires_in"`
}

// LoginResponse bundles the authenticated user with its token pair
type LoginResponse struct {
	User   *UserResponse `json:"user"`
	Tokens *TokenResponse `json:"tokens"`
}

// RefreshTokenRequest represents a refresh token exchange request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh" binding:"required"`
}

// ForgotPasswordRequest starts the password reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the password reset flow
type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ChangePasswordRequest represents an authenticated password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// UpdateProfileRequest represents a partial profile update. Nil fields
// are left untouched.
type UpdateProfileRequest struct {
	FullName    *string `json:"full_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	CompanyName *string `json:"company_name"`
	PhoneNo     *string `json:"phone_no"`
}

// UserResponse represents account information returned to clients
type UserResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	CompanyName string    `json:"company_name"`
	PhoneNo     string    `json:"phone_no"`
	Role        string    `json:"role"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUserResponse builds a UserResponse from a user model
func NewUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		CompanyName: user.CompanyName,
		PhoneNo:     user.PhoneNo,
		Role:        string(user.Role),
		IsVerified:  user.IsVerified,
		CreatedAt:   user.CreatedAt,
	}
}
