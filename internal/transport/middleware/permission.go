package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/ngo-platform/internal"
)

// RequirePermissions creates a middleware that checks if user has any of the required permissions
func RequirePermissions(logger *slog.Logger, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := errors.UserFromContext(r.Context())
			if !ok {
				writeAppError(w, errors.ErrInvalidToken.WithMessage("Authentication required"))
				return
			}

			for _, required := range permissions {
				if user.HasPermission(required) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("access denied: user lacks required permissions",
				"user_id", user.ID,
				"required_permissions", permissions,
				"user_permissions", user.Permissions)
			writeAppError(w, errors.ErrAdminRequired)
		})
	}
}

// RequireAdmin is RequirePermissions for the admin permission.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return RequirePermissions(logger, errors.PermissionAdmin)
}

func writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
