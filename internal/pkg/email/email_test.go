package email

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	first, err := GenerateToken()
	require.NoError(t, err)
	assert.Len(t, first, 32)

	second, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	for _, c := range first {
		assert.True(t,
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'),
			"token characters are URL-safe, got %q", c)
	}
}

func TestSendWithoutAPIKeyLogsOnly(t *testing.T) {
	// With no API key configured the service logs the link instead of
	// calling the provider, so these must all succeed offline.
	service := NewEmailService(SendGridConfig{
		FromName:    "ApplyGate",
		FromEmail:   "noreply@applygate.app",
		FrontendURL: "http://localhost:3000",
	}, zerolog.Nop())

	assert.NoError(t, service.SendVerificationEmail("user@example.com", "User", 1, "token"))
	assert.NoError(t, service.SendPasswordResetEmail("user@example.com", "User", 1, "token"))
	assert.NoError(t, service.SendPasswordChangedEmail("user@example.com", "User"))
}
