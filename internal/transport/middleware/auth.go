package middleware

import (
	"net/http"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/pkg/logger"
)

// PrincipalLogContext tags the request-scoped logger with the resolved caller.
func PrincipalLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := internal.PrincipalFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", p.UserID, "roles", p.Roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
