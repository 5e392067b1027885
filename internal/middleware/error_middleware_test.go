package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishan/applygate/internal/app/models/dto"
	"github.com/nishan/applygate/internal/pkg/apperrors"
)

func handleError(t *testing.T, err error) (int, dto.APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	HandleAPIError(c, err)

	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return recorder.Code, resp
}

func TestHandleAPIErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"validation failed", apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"bad request", apperrors.NewBadRequestError("Passwords do not match"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"invalid email token", apperrors.ErrInvalidEmailToken, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"invalid reset token", apperrors.ErrInvalidPasswordResetToken, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"same password", apperrors.ErrSamePassword, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"wrong current password", apperrors.ErrWrongCurrentPassword, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"expired token", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"revoked token", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"token not found", apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound},
		{"email not verified", apperrors.ErrEmailNotVerified, http.StatusForbidden, dto.ErrorCodeEmailNotVerified},
		{"permission denied", apperrors.NewForbiddenError("no"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"user not found", apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"applicant not found", apperrors.ErrApplicantNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"email exists", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"applicant email exists", apperrors.ErrApplicantEmailExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"mail dispatch failed", apperrors.ErrMailDispatchFailed, http.StatusInternalServerError, dto.ErrorCodeExternalServiceError},
		{"unknown error", assertableError("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := handleError(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

type assertableError string

func (e assertableError) Error() string { return string(e) }

func TestHandleAPIErrorValidationDetails(t *testing.T) {
	err := apperrors.NewValidationError(map[string]string{
		"document":  "Only PDF files are allowed",
		"academics": "Academics must be a list",
	})

	status, resp := handleError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, resp.Error)

	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Only PDF files are allowed", details["document"])
	assert.Equal(t, "Academics must be a list", details["academics"])
}

func TestHandleAPIErrorCustomMessage(t *testing.T) {
	status, resp := handleError(t, apperrors.NewForbiddenError("You do not have permission to delete applicants"))
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "You do not have permission to delete applicants", resp.Error.Message)
}
