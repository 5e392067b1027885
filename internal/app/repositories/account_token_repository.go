package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nishan/applygate/internal/app/models"
	"github.com/nishan/applygate/internal/pkg/apperrors"
)

// IAccountTokenRepository defines the interface for single-use account token
// operations (email verification and password reset links)
type IAccountTokenRepository interface {
	CreateToken(ctx context.Context, userID int64, token string, purpose models.TokenPurpose, expiryDate time.Time) error
	GetToken(ctx context.Context, userID int64, token string, purpose models.TokenPurpose) (*models.AccountToken, error)
	MarkTokenAsUsed(ctx context.Context, tokenID int64) error
	DeleteTokensByUser(ctx context.Context, userID int64, purpose models.TokenPurpose) error
	DeleteExpiredTokens(ctx context.Context) error
}

// AccountTokenRepository manages account tokens in the database
type AccountTokenRepository struct {
	db *pgxpool.Pool
}

// NewAccountTokenRepository creates a new AccountTokenRepository
func NewAccountTokenRepository(db *pgxpool.Pool) *AccountTokenRepository {
	return &AccountTokenRepository{
		db: db,
	}
}

// CreateToken stores a new account token in the database
func (r *AccountTokenRepository) CreateToken(ctx context.Context, userID int64, token string, purpose models.TokenPurpose, expiryDate time.Time) error {
	query := `
		INSERT INTO account_tokens (user_id, token, purpose, expiry_date)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, userID, token, purpose, expiryDate)
	if err != nil {
		return fmt.Errorf("error creating account token: %w", err)
	}

	return nil
}

// GetToken retrieves a token scoped to a user and purpose
func (r *AccountTokenRepository) GetToken(ctx context.Context, userID int64, token string, purpose models.TokenPurpose) (*models.AccountToken, error) {
	query := `
		SELECT id, user_id, token, purpose, expiry_date, used_at, created_at
		FROM account_tokens
		WHERE user_id = $1 AND token = $2 AND purpose = $3
	`

	var at models.AccountToken
	err := r.db.QueryRow(ctx, query, userID, token, purpose).Scan(
		&at.ID,
		&at.UserID,
		&at.Token,
		&at.Purpose,
		&at.ExpiryDate,
		&at.UsedAt,
		&at.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error retrieving account token: %w", err)
	}

	return &at, nil
}

// MarkTokenAsUsed marks a token as used to prevent reuse
func (r *AccountTokenRepository) MarkTokenAsUsed(ctx context.Context, tokenID int64) error {
	query := `
		UPDATE account_tokens
		SET used_at = $1
		WHERE id = $2 AND used_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, time.Now(), tokenID)
	if err != nil {
		return fmt.Errorf("error marking token as used: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}

	return nil
}

// DeleteTokensByUser removes all of a user's tokens for a given purpose
func (r *AccountTokenRepository) DeleteTokensByUser(ctx context.Context, userID int64, purpose models.TokenPurpose) error {
	query := `
		DELETE FROM account_tokens
		WHERE user_id = $1 AND purpose = $2
	`

	_, err := r.db.Exec(ctx, query, userID, purpose)
	if err != nil {
		return fmt.Errorf("error deleting account tokens for user: %w", err)
	}

	return nil
}

// DeleteExpiredTokens removes all expired tokens
func (r *AccountTokenRepository) DeleteExpiredTokens(ctx context.Context) error {
	query := `
		DELETE FROM account_tokens
		WHERE expiry_date < $1
	`

	_, err := r.db.Exec(ctx, query, time.Now())
	if err != nil {
		return fmt.Errorf("error deleting expired account tokens: %w", err)
	}

	return nil
}
