package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// TokenBytes yields a 64-character hex token
	TokenBytes = 32
)

// dummyHash is compared against when no account matches the submitted
// email, so login latency does not reveal account existence.
var dummyHash = func() string {
	h, _ := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), BcryptCost)
	return string(h)
}()

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrRoleMismatch       = errors.New("role not allowed")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// AuthService handles registration, login and opaque bearer tokens
type AuthService interface {
	Register(ctx context.Context, fullName, email, password string, role domain.Role) (*domain.User, string, error)
	Login(ctx context.Context, email, password string, requiredRole domain.Role) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to its owning user, enforcing
	// expiry and account activation.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	// SweepTokens removes expired tokens and stale null-expiry rows.
	SweepTokens(ctx context.Context) (int64, error)
}

type authService struct {
	users       repository.UserRepository
	tokens      repository.APITokenRepository
	attempts    AttemptStore
	tokenExpiry time.Duration
	maxAttempts int64
	attemptsTTL time.Duration
	logger      *zap.Logger
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	users repository.UserRepository,
	tokens repository.APITokenRepository,
	attempts AttemptStore,
	tokenExpiry time.Duration,
	maxAttempts int,
	attemptWindow time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:       users,
		tokens:      tokens,
		attempts:    attempts,
		tokenExpiry: tokenExpiry,
		maxAttempts: int64(maxAttempts),
		attemptsTTL: attemptWindow,
		logger:      logger,
	}
}

// Register creates a new account and issues its first token
func (s *authService) Register(ctx context.Context, fullName, email, password string, role domain.Role) (*domain.User, string, error) {
	if role == "" {
		role = domain.RoleClient
	}
	if !role.Valid() {
		return nil, "", fmt.Errorf("unknown role %q", role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and issues a fresh token, invalidating all
// previously issued tokens for the account.
func (s *authService) Login(ctx context.Context, email, password string, requiredRole domain.Role) (*domain.User, string, error) {
	attemptKey := email

	count, err := s.attempts.Count(ctx, attemptKey)
	if err != nil {
		// Limiter failures must not lock everyone out
		s.logger.Error("Failed to read login attempt counter", zap.Error(err))
		count = 0
	}
	if count >= s.maxAttempts {
		return nil, "", ErrTooManyAttempts
	}

	// Slow down repeated failures a little
	if count > 0 {
		time.Sleep(time.Duration(count) * 100 * time.Millisecond)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && err != repository.ErrUserNotFound {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	// The hash comparison runs even without a matching account, so the
	// failure path costs the same either way.
	hash := dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	if user == nil || compareErr != nil {
		if _, err := s.attempts.Incr(ctx, attemptKey, s.attemptsTTL); err != nil {
			s.logger.Error("Failed to record login attempt", zap.Error(err))
		}
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	if requiredRole != "" && user.Role != requiredRole {
		return nil, "", ErrRoleMismatch
	}

	if err := s.attempts.Reset(ctx, attemptKey); err != nil {
		s.logger.Error("Failed to reset login attempt counter", zap.Error(err))
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// Logout deletes the presented token
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.tokens.DeleteByToken(ctx, token); err != nil {
		if err == repository.ErrTokenNotFound {
			// Already gone, consider it logged out
			return nil
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Authenticate resolves an opaque bearer token to its user
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	apiToken, err := s.tokens.FindValidByToken(ctx, token)
	if err != nil {
		if err == repository.ErrTokenNotFound {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	user, err := s.users.FindByID(ctx, apiToken.UserID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return user, nil
}

// SweepTokens removes tokens past expiry plus null-expiry rows older than
// 30 days.
func (s *authService) SweepTokens(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx)
}

// issueToken generates a fresh opaque token for the user, deleting every
// prior token first so at most one is live.
func (s *authService) issueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return "", err
	}

	raw := make([]byte, TokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	tokenString := hex.EncodeToString(raw)

	expiresAt := time.Now().Add(s.tokenExpiry)
	apiToken := &domain.APIToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     tokenString,
		ExpiresAt: &expiresAt,
		CreatedAt: time.Now(),
	}

	if err := s.tokens.Create(ctx, apiToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
