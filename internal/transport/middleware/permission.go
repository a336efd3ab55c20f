package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/school-platform/internal"
	"github.com/frahmantamala/school-platform/internal/transport"
)

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated(base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := base.Principal(w, r); !ok {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff admits teachers and supervisors; everyone else gets 403.
func RequireStaff(base *transport.BaseHandler) func(http.Handler) http.Handler {
	return require(base, "staff", internal.ErrStaffOnly, (*internal.Principal).IsStaff)
}

// RequireSupervisor admits supervisors with a teacher identity.
func RequireSupervisor(base *transport.BaseHandler) func(http.Handler) http.Handler {
	return require(base, "supervisor", internal.ErrSupervisorOnly, (*internal.Principal).IsSupervisor)
}

// RequireStudent rejects staff, who cannot purchase courses.
func RequireStudent(base *transport.BaseHandler) func(http.Handler) http.Handler {
	return require(base, "student", internal.ErrStudentOnly, func(p *internal.Principal) bool {
		return !p.IsStaff()
	})
}

func require(base *transport.BaseHandler, name string, denied *internal.AppError, allow func(*internal.Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := internal.PrincipalFromContext(r.Context())
			if !ok || !allow(p) {
				attrs := []any{"guard", name, "path", r.URL.Path}
				if ok {
					attrs = append(attrs, "user_id", p.UserID, "roles", p.Roles)
				}
				base.Logger.Log(r.Context(), slog.LevelWarn, "access denied", attrs...)
				base.HandleError(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
