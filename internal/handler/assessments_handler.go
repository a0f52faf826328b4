package handler

import (
	"net/http"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/service"
	"github.com/quarkfin/platform-go/internal/view"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Generic website assessments
// ============================================================

func listAssessmentsHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/assessments")
		defer span.End()

		list, ok := mountQuery(ctx, w, view.Assessments(svc.API(), parseListParams(r)), logger)
		if !ok {
			return
		}
		if list == nil {
			list = []domain.Assessment{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func createAssessmentHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /app/assessments")
		defer span.End()

		var req domain.CreateAssessmentRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := req.Validate(); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("assessment.website", req.Website))

		a, err := view.CreateAssessment(svc.API()).Run(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

func getAssessmentHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/assessments/{id}")
		defer span.End()

		id, err := parseAssessmentID(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int64("assessment.id", id))

		a, ok := mountQuery(ctx, w, view.Assessment(svc.API(), id), logger)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}
