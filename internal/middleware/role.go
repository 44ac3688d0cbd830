package middleware

import (
	"net/http"

	"github.com/bookstore/backend/internal/models"
	"go.uber.org/zap"
)

// RoleMiddleware lets the request through only when the verified claims carry the required role
//
// It must run after AuthMiddleware. Missing claims are a 401, a wrong role a 403.
func RoleMiddleware(required models.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok {
				writeJSONMessage(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			if claims.Role.OrDefault() != required {
				logger.Warn("role check failed",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Int("user_id", claims.UserID),
					zap.String("path", r.URL.Path))
				writeJSONMessage(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
