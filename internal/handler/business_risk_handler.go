package handler

import (
	"context"
	"net/http"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/service"
	"github.com/quarkfin/platform-go/internal/view"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Business risk prevention
// ============================================================

func listBusinessRiskHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/business-risk/assessments")
		defer span.End()

		list, ok := mountQuery(ctx, w, view.BusinessRiskAssessments(svc.API()), logger)
		if !ok {
			return
		}
		if list == nil {
			list = []domain.BusinessRiskAssessment{}
		}
		span.SetAttributes(attribute.Int("assessments.count", len(list)))
		writeJSON(w, http.StatusOK, list)
	}
}

func createBusinessRiskHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /app/business-risk/assessments")
		defer span.End()

		var req domain.CreateBusinessRiskAssessmentRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if req.AssessmentType == "" {
			req.AssessmentType = domain.AssessmentComprehensive
		}
		if err := req.Validate(); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("assessment.domain", req.Domain),
			attribute.String("assessment.type", string(req.AssessmentType)),
		)

		a, err := view.CreateBusinessRiskAssessment(svc.API()).Run(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

func getBusinessRiskHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/business-risk/assessments/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("assessment.id", id))

		a, ok := mountQuery(ctx, w, view.BusinessRiskAssessment(svc.API(), id), logger)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func updateBusinessRiskHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /app/business-risk/assessments/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		var req domain.UpdateBusinessRiskAssessmentRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		a, err := svc.API().UpdateBusinessRiskAssessment(ctx, id, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func deleteBusinessRiskHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /app/business-risk/assessments/{id}")
		defer span.End()

		resp, err := svc.API().DeleteBusinessRiskAssessment(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func bulkDeleteBusinessRiskHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /app/business-risk/assessments/bulk")
		defer span.End()

		var req domain.BulkDeleteRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if len(req.IDs) == 0 {
			handleServiceError(w, &domain.ErrValidation{Field: "ids", Message: "at least one id is required"}, logger)
			return
		}
		span.SetAttributes(attribute.Int("assessments.count", len(req.IDs)))

		resp, err := svc.API().BulkDeleteBusinessRiskAssessments(ctx, req.IDs)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func rerunBusinessRiskHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /app/business-risk/assessments/{id}/rerun")
		defer span.End()

		a, err := view.RerunBusinessRiskAssessment(svc.API()).Run(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, a)
	}
}

func insightsHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/business-risk/insights")
		defer span.End()

		insights, ok := mountQuery(ctx, w, view.BusinessRiskInsights(svc.API()), logger)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, insights)
	}
}

func exportCSVHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/business-risk/export.csv")
		defer span.End()

		runDownload(ctx, w, svc.API().ExportBusinessRiskCSV, logger)
	}
}

func exportPDFHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/business-risk/assessments/{id}/export.pdf")
		defer span.End()

		id := chi.URLParam(r, "id")
		runDownload(ctx, w, func(ctx context.Context) (*domain.Download, error) {
			return svc.API().ExportBusinessRiskPDF(ctx, id)
		}, logger)
	}
}
