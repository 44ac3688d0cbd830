package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/bookstore/backend/internal/auth"
	"github.com/bookstore/backend/internal/models"
	"go.uber.org/zap"
)

// Every authentication failure gets this body so the failure mode is not revealed
const unauthorizedMessage = "authentication required"

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserLookup reads the current state of a token subject
type UserLookup interface {
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// AuthMiddleware attaches the claims of a valid bearer token to the request context
//
// The embedded claims are trusted until the token expires, so a deleted or
// demoted user keeps access for up to auth.TokenLifetime. Use StrictAuthMiddleware
// where that window is not acceptable.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return authMiddleware(verifier, nil, logger)
}

// StrictAuthMiddleware is AuthMiddleware plus a per-request read of the token subject:
// deleted users are rejected and the stored role replaces the role claim
func StrictAuthMiddleware(verifier TokenVerifier, users UserLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return authMiddleware(verifier, users, logger)
}

func authMiddleware(verifier TokenVerifier, users UserLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeJSONMessage(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("token rejected",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				writeJSONMessage(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			if users != nil {
				user, err := users.GetByID(r.Context(), claims.UserID)
				if errors.Is(err, models.ErrNotFound) {
					logger.Info("token subject no longer exists",
						zap.String("request_id", GetRequestID(r.Context())),
						zap.Int("user_id", claims.UserID))
					writeJSONMessage(w, http.StatusUnauthorized, unauthorizedMessage)
					return
				}
				if err != nil {
					logger.Error("failed to re-check token subject", zap.Error(err), zap.Int("user_id", claims.UserID))
					writeJSONMessage(w, http.StatusInternalServerError, "internal server error")
					return
				}
				claims.Role = user.Role.OrDefault()
				claims.Email = user.Email
				claims.Username = user.Username
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves the verified claims from context
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// WithClaims returns a copy of ctx carrying claims
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
