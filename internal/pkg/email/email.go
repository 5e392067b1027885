package email

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// EmailService defines the interface for email operations
type EmailService interface {
	SendVerificationEmail(toEmail, toName string, userID int64, token string) error
	SendPasswordResetEmail(toEmail, toName string, userID int64, token string) error
	SendPasswordChangedEmail(toEmail, toName string) error
}

// SendGridConfig holds configuration for the SendGrid mail API
type SendGridConfig struct {
	APIKey      string
	FromName    string
	FromEmail   string
	FrontendURL string // Base URL for links embedded in emails
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SendGridConfig
	client *http.Client
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SendGridConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// SendVerificationEmail sends an email with an account verification link
func (s *EmailServiceImpl) SendVerificationEmail(toEmail, toName string, userID int64, token string) error {
	verificationURL := fmt.Sprintf("%s/verify-email/%d/%s/", s.config.FrontendURL, userID, token)

	// Without an API key, log the link instead (for development only)
	if s.config.APIKey == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("verificationURL", verificationURL).
			Msg("SendGrid API key not configured - verification email not sent. Use the URL above for testing.")
		return nil
	}

	subject := "Verify Your Email Address - ApplyGate"

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Welcome to ApplyGate!</h2>
				<p>Hello %s,</p>
				<p>Thank you for registering with ApplyGate. To complete your registration, please verify your email address by clicking the button below:</p>

				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Verify Email</a>
				</div>

				<p>This verification link will expire in 24 hours.</p>

				<p>If you did not register for an ApplyGate account, please ignore this email.</p>

				<p>Best regards,<br>The ApplyGate Team</p>
			</div>
		</body>
		</html>
	`, toName, verificationURL)

	return s.sendHTMLEmail(toEmail, toName, subject, body)
}

// SendPasswordResetEmail sends an email with a password reset link
func (s *EmailServiceImpl) SendPasswordResetEmail(toEmail, toName string, userID int64, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%d/%s/", s.config.FrontendURL, userID, token)

	if s.config.APIKey == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("resetURL", resetURL).
			Msg("SendGrid API key not configured - password reset email not sent. Use the URL above for testing.")
		return nil
	}

	subject := "Reset Your Password - ApplyGate"

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Password Reset Request</h2>
				<p>Hello %s,</p>
				<p>We received a request to reset the password for your ApplyGate account. Click the button below to choose a new password:</p>

				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
				</div>

				<p>This link will expire in 24 hours and can only be used once.</p>

				<p>If you did not request a password reset, please ignore this email. Your password will remain unchanged.</p>

				<p>Best regards,<br>The ApplyGate Team</p>
			</div>
		</body>
		</html>
	`, toName, resetURL)

	return s.sendHTMLEmail(toEmail, toName, subject, body)
}

// SendPasswordChangedEmail notifies the user that their password was changed
func (s *EmailServiceImpl) SendPasswordChangedEmail(toEmail, toName string) error {
	if s.config.APIKey == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Msg("SendGrid API key not configured - password changed email not sent.")
		return nil
	}

	subject := "Your Password Was Changed - ApplyGate"

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Password Changed</h2>
				<p>Hello %s,</p>
				<p>The password for your ApplyGate account was just changed. If this was you, no further action is needed.</p>

				<p>If you did not make this change, please reset your password immediately and contact support.</p>

				<p>Best regards,<br>The ApplyGate Team</p>
			</div>
		</body>
		</html>
	`, toName)

	return s.sendHTMLEmail(toEmail, toName, subject, body)
}

// sendGridMessage is the request payload for the SendGrid v3 mail send API
type sendGridMessage struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress `json:"from"`
	Subject string          `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// sendHTMLEmail delivers an HTML email through the SendGrid v3 API
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, toName, subject, htmlBody string) error {
	msg := sendGridMessage{
		From:    sendGridAddress{Email: s.config.FromEmail, Name: s.config.FromName},
		Subject: subject,
	}
	msg.Personalizations = make([]struct {
		To []sendGridAddress `json:"to"`
	}, 1)
	msg.Personalizations[0].To = []sendGridAddress{{Email: toEmail, Name: toName}}
	msg.Content = []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{{Type: "text/html", Value: htmlBody}}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode mail payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, sendGridEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Error().Int("status", resp.StatusCode).Str("toEmail", toEmail).Msg("Mail API rejected the request")
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}

// GenerateToken generates a random token for verification and reset links
func GenerateToken() (string, error) {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, 32)

	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", fmt.Errorf("secure random generation failed: %w", err)
		}
		result[i] = chars[n.Int64()]
	}

	return string(result), nil
}
