package middleware

import (
	"net/http"

	"threadmart/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin gates catalog-management routes (product create, variant
// save, category create) behind the admin role. Must run after
// AuthMiddleware, which puts the role into the context.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok || role != domain.RoleAdmin {
				logger.Warn("Admin route denied",
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
