// Package rest serves the underwriting API as JSON over HTTP.
package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bibbank/underwriting/pkg/auth"
)

// RouterOptions configures NewRouter. A nil JWT disables authentication.
type RouterOptions struct {
	JWT            *auth.JWTService
	AllowedOrigins []string
	Metrics        http.Handler
}

// NewRouter mounts the API, health probes and metrics.
//
//	POST /v1/evaluations
//	POST /v1/borrowers/{borrowerID}/evaluations
//	POST /v1/applications
//	GET  /v1/applications/{applicationID}
//	POST /v1/applications/{applicationID}/decision
//	POST /v1/applications/{applicationID}/disbursement
//	GET  /v1/loans/{accountID}
//	POST /v1/loans/{accountID}/payments
//	POST /v1/loans/overdue-sweep
func NewRouter(h *Handler, health *HealthHandler, logger *slog.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", health.liveness)
	r.Get("/readyz", health.readiness)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	requireRoles := func(roles ...string) func(http.Handler) http.Handler {
		if opts.JWT == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return auth.RequireRoles(append(roles, auth.RoleAdmin)...)
	}

	r.Route("/v1", func(r chi.Router) {
		if opts.JWT != nil {
			r.Use(auth.HTTPMiddleware(opts.JWT))
		} else {
			logger.Warn("HTTP authentication disabled")
		}

		r.With(requireRoles(auth.RoleLoanOfficer, auth.RoleUnderwriter)).Post("/evaluations", h.Evaluate)
		r.With(requireRoles(auth.RoleLoanOfficer, auth.RoleUnderwriter)).Post("/borrowers/{borrowerID}/evaluations", h.EvaluateBorrower)

		r.Route("/applications", func(r chi.Router) {
			r.With(requireRoles(auth.RoleLoanOfficer)).Post("/", h.SubmitApplication)
			r.With(requireRoles(auth.RoleLoanOfficer, auth.RoleUnderwriter, auth.RoleAuditor)).Get("/{applicationID}", h.GetApplication)
			r.With(requireRoles(auth.RoleUnderwriter)).Post("/{applicationID}/decision", h.DecideApplication)
			r.With(requireRoles(auth.RoleServicing)).Post("/{applicationID}/disbursement", h.DisburseLoan)
		})

		r.Route("/loans", func(r chi.Router) {
			r.With(requireRoles(auth.RoleServicing)).Post("/overdue-sweep", h.SweepOverdue)
			r.With(requireRoles(auth.RoleServicing, auth.RoleAuditor)).Get("/{accountID}", h.GetLoan)
			r.With(requireRoles(auth.RoleServicing)).Post("/{accountID}/payments", h.MakePayment)
		})
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.DebugContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
