package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrTokenNotFound = errors.New("token not found")
)

// APITokenRepository defines the interface for bearer token data access
type APITokenRepository interface {
	Create(ctx context.Context, token *domain.APIToken) error
	// FindValidByToken returns the token only if it has not expired.
	FindValidByToken(ctx context.Context, token string) (*domain.APIToken, error)
	// DeleteByUser removes every token owned by the user. Used on issuance
	// so at most one live token exists per user.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteByToken(ctx context.Context, token string) error
	// DeleteExpired removes tokens past their expiry, plus legacy
	// null-expiry tokens older than 30 days.
	DeleteExpired(ctx context.Context) (int64, error)
}

type apiTokenRepository struct {
	db DBTX
}

// NewAPITokenRepository creates a new instance of APITokenRepository
func NewAPITokenRepository(db DBTX) APITokenRepository {
	return &apiTokenRepository{db: db}
}

// Create inserts a new token into the database using parameterized queries
func (r *apiTokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	query := `
		INSERT INTO api_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// FindValidByToken retrieves an unexpired token by its opaque string
func (r *apiTokenRepository) FindValidByToken(ctx context.Context, token string) (*domain.APIToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM api_tokens
		WHERE token = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`

	apiToken := &domain.APIToken{}
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&apiToken.ID,
		&apiToken.UserID,
		&apiToken.Token,
		&expiresAt,
		&apiToken.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	if expiresAt.Valid {
		apiToken.ExpiresAt = &expiresAt.Time
	}

	return apiToken, nil
}

// DeleteByUser removes all tokens owned by a user
func (r *apiTokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM api_tokens WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete tokens for user: %w", err)
	}

	return nil
}

// DeleteByToken removes a single token by its opaque string
func (r *apiTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM api_tokens WHERE token = $1`

	result, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// DeleteExpired removes expired and stale null-expiry tokens
func (r *apiTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM api_tokens
		WHERE (expires_at IS NOT NULL AND expires_at < NOW())
		   OR (expires_at IS NULL AND created_at < NOW() - INTERVAL '30 days')
	`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
