package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/school-platform/api"
	"github.com/frahmantamala/school-platform/internal/article"
	"github.com/frahmantamala/school-platform/internal/auth"
	"github.com/frahmantamala/school-platform/internal/comment"
	"github.com/frahmantamala/school-platform/internal/course"
	"github.com/frahmantamala/school-platform/internal/transaction"
	"github.com/frahmantamala/school-platform/internal/transport"
	"github.com/frahmantamala/school-platform/internal/transport/middleware"
	"github.com/frahmantamala/school-platform/internal/transport/swagger"
	"github.com/frahmantamala/school-platform/internal/user"
)

type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	Article  *article.Handler
	Comment  *comment.Handler
	Course   *course.Handler
	Checkout *transaction.Handler
	Webhook  *transaction.WebhookHandler
	User     *user.Handler
}

// Observability is optional; nil fields leave the matching route or middleware out.
type Observability struct {
	HTTPMetrics    *middleware.HTTPMetrics
	MetricsPath    string
	MetricsHandler http.Handler
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, obs Observability, logger *slog.Logger) {
	base := transport.NewBaseHandler(logger)

	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if obs.HTTPMetrics != nil {
		router.Use(obs.HTTPMetrics.Middleware)
	}
	router.Use(h.Auth.ResolvePrincipal)
	router.Use(middleware.PrincipalLogContext)

	// ops
	router.Get("/ping", h.Health.Ping)
	router.Get("/health", h.Health.Health)
	if obs.MetricsHandler != nil && obs.MetricsPath != "" {
		router.Handle(obs.MetricsPath, obs.MetricsHandler)
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec())
	})
	router.Handle("/swagger/*", swagger.Handler())

	// public
	router.Post("/auth/login", h.Auth.Login)
	router.Post("/webhooks/payment", h.Webhook.HandlePaymentEvent)
	router.Get("/articles", h.Article.List)
	router.Get("/courses", h.Course.Catalogue)
	router.Get("/courses/{id}", h.Course.Detail)
	router.Get("/checkout/publishable-key", h.Checkout.PublishableKey)

	router.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuthenticated(base))

		pr.Get("/users/me", h.User.GetCurrentUser)

		pr.Get("/my-articles", h.Article.ListMine)
		pr.Post("/articles", h.Article.Create)
		pr.Get("/articles/{id}", h.Article.Get)
		pr.Post("/articles/{id}", h.Article.Update)
		pr.Delete("/articles/{id}", h.Article.Delete)
		pr.Post("/articles/{id}/comments", h.Comment.AddToArticle)
		pr.Post("/articles/{id}/comments/{comment_id}/replies", h.Comment.Reply)

		pr.Get("/courses/{id}/lessons", h.Course.Curriculum)

		pr.Post("/checkout/complete", h.Checkout.Complete)
		pr.Group(func(sr chi.Router) {
			sr.Use(middleware.RequireStudent(base))
			sr.Get("/checkout/{course_id}", h.Checkout.Checkout)
			sr.Post("/checkout/stripe-intent/{course_id}", h.Checkout.StripeIntent)
		})

		pr.Route("/manage", func(mr chi.Router) {
			mr.Use(middleware.RequireStaff(base))

			mr.Get("/courses", h.Course.ManageCourses)
			mr.Post("/courses", h.Course.CreateCourse)
			mr.Post("/courses/{id}", h.Course.UpdateCourse)
			mr.Delete("/courses/{id}", h.Course.DeleteCourse)

			mr.Get("/courses/{course_id}/units", h.Course.ManageUnits)
			mr.Post("/courses/{course_id}/units", h.Course.CreateUnit)
			mr.Post("/courses/{course_id}/units/{id}", h.Course.UpdateUnit)
			mr.Delete("/units/{id}", h.Course.DeleteUnit)

			mr.Get("/courses/{course_id}/units/{unit_id}/lessons", h.Course.ManageLessons)
			mr.Post("/courses/{course_id}/units/{unit_id}/lessons", h.Course.CreateLesson)
			mr.Post("/courses/{course_id}/units/{unit_id}/lessons/{id}", h.Course.UpdateLesson)
			mr.Delete("/lessons/{id}", h.Course.DeleteLesson)

			mr.Get("/comments", h.Comment.List)
			mr.Delete("/comments/{id}", h.Comment.Delete)

			mr.With(middleware.RequireSupervisor(base)).Get("/transactions/export", h.Checkout.Export)
		})
	})
}
