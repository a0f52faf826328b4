package handler

import (
	"net/http"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/guard"
	"github.com/quarkfin/platform-go/internal/infra/observability"
	"github.com/quarkfin/platform-go/internal/port"
	"github.com/quarkfin/platform-go/internal/service"
	"github.com/quarkfin/platform-go/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// A nil svc serves the operational endpoints only.
func NewRouter(
	svc *service.PlatformService,
	sessions port.SessionVerifier,
	routes guard.Table,
	poll domain.PollOptions,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- Route gate ---
	if routes == nil {
		routes = guard.DefaultTable()
	}
	r.With(OptionalSession(sessions, logger)).Get("/session/gate", gateHandler(routes))

	if svc == nil {
		return r
	}

	// --- Platform API (signed-in) ---
	r.Route("/app", func(r chi.Router) {
		r.Use(SessionMiddleware(sessions, logger))

		r.Get("/session", sessionHandler())
		r.Get("/dashboard", dashboardHandler(svc, logger))

		// =============================================
		// Assessments
		// =============================================
		r.Get("/assessments", listAssessmentsHandler(svc, logger))
		r.Post("/assessments", createAssessmentHandler(svc, logger))
		r.Get("/assessments/{id}", getAssessmentHandler(svc, logger))
		r.Get("/assessments/{id}/stream", streamAssessmentHandler(svc, poll, logger))

		// =============================================
		// Business risk prevention
		// =============================================
		r.Route("/business-risk", func(r chi.Router) {
			r.Get("/insights", insightsHandler(svc, logger))
			r.Get("/export.csv", exportCSVHandler(svc, logger))

			r.Get("/assessments", listBusinessRiskHandler(svc, logger))
			r.Post("/assessments", createBusinessRiskHandler(svc, logger))
			r.Delete("/assessments/bulk", bulkDeleteBusinessRiskHandler(svc, logger))
			r.Get("/assessments/{id}", getBusinessRiskHandler(svc, logger))
			r.Put("/assessments/{id}", updateBusinessRiskHandler(svc, logger))
			r.Delete("/assessments/{id}", deleteBusinessRiskHandler(svc, logger))
			r.Post("/assessments/{id}/rerun", rerunBusinessRiskHandler(svc, logger))
			r.Get("/assessments/{id}/export.pdf", exportPDFHandler(svc, logger))
			r.Get("/assessments/{id}/stream", streamBusinessRiskHandler(svc, poll, logger))
		})

		// =============================================
		// Account, credits, plans and payments
		// =============================================
		r.Route("/account", func(r chi.Router) {
			r.Get("/profile", getProfileHandler(svc, logger))
			r.Put("/profile", updateProfileHandler(svc, logger))
			r.Get("/credits", creditsHandler(svc, logger))
			r.Get("/plans", plansHandler(svc, logger))
			r.Get("/onboarding", onboardingHandler(svc, logger))
			r.Post("/phone/send", sendPhoneCodeHandler(svc, logger))
			r.Post("/phone/verify", verifyPhoneCodeHandler(svc, logger))
			r.Post("/payments", createPaymentHandler(svc, logger))
			r.Post("/payments/verify", verifyPaymentHandler(svc, logger))
		})

		// =============================================
		// Website risk intake
		// =============================================
		r.Route("/website-risk", func(r chi.Router) {
			r.Post("/", submitWebsiteRiskHandler(svc, logger))
			r.Get("/", getWebsiteRiskHandler(svc, logger))
			r.Post("/qualification", qualificationHandler(svc, logger))
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "portal", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if svc != nil {
			start := time.Now()
			st := view.APIHealth(svc.API()).Refetch(ctx)
			backend := domain.ServiceHealth{
				Name:        "quarkfin-api",
				Status:      "healthy",
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			}
			if st.Err != nil {
				logger.Warn("backend health check failed", zap.Error(st.Err))
				backend.Status = "unhealthy"
				backend.Error = st.Err.Error()
			}
			services = append(services, backend)
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// ============================================================
// Session
// ============================================================

// gateHandler answers whether the caller may open a portal page.
func gateHandler(routes guard.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			writeError(w, http.StatusBadRequest, "path is required")
			return
		}
		writeJSON(w, http.StatusOK, routes.Decide(path, SessionFromContext(r.Context())))
	}
}

func sessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SessionFromContext(r.Context()))
	}
}

func dashboardHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/dashboard")
		defer span.End()

		dash, err := svc.Dashboard(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash)
	}
}
