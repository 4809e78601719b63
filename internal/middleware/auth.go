package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

// Authenticator resolves an opaque bearer token to its owning user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware validates the bearer token against the token store and
// injects the resolved user into the request context.
func AuthMiddleware(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			tokenString := parts[1]

			user, err := auth.Authenticate(r.Context(), tokenString)
			if err != nil {
				switch err {
				case service.ErrInvalidToken:
					logger.Debug("Token rejected", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, "invalid or expired token")
				case repository.ErrUserNotFound:
					logger.Debug("Token user no longer exists")
					RespondWithError(w, http.StatusNotFound, "user not found")
				case service.ErrAccountDisabled:
					logger.Debug("Disabled account attempted access")
					RespondWithError(w, http.StatusForbidden, "account is disabled")
				default:
					logger.Error("Token verification failed", zap.Error(err))
					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, tokenString)

			logger.Debug("User authenticated",
				zap.String("user_id", user.ID.String()),
				zap.String("role", string(user.Role)),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the authenticated user from the request context
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// GetToken extracts the presented bearer token from the request context
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
