package handler

import (
	"net/http"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Website risk intake
// ============================================================

func submitWebsiteRiskHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /app/website-risk")
		defer span.End()

		var req domain.WebsiteRiskRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		switch {
		case req.Website == "":
			handleServiceError(w, &domain.ErrValidation{Field: "Website", Message: "is required"}, logger)
			return
		case req.ID == "":
			handleServiceError(w, &domain.ErrValidation{Field: "Id", Message: "is required"}, logger)
			return
		case req.BillingCountryCode == "":
			handleServiceError(w, &domain.ErrValidation{Field: "BillingCountryCode", Message: "is required"}, logger)
			return
		}
		span.SetAttributes(attribute.String("website", req.Website))

		accepted, err := svc.API().SubmitWebsiteRisk(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, accepted)
	}
}

func getWebsiteRiskHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/website-risk")
		defer span.End()

		website := r.URL.Query().Get("website")
		if website == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "website", Message: "is required"}, logger)
			return
		}

		report, err := svc.API().GetWebsiteRisk(ctx, website)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func qualificationHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /app/website-risk/qualification")
		defer span.End()

		var req domain.QualificationUpdate
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if req.Website == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "website", Message: "is required"}, logger)
			return
		}
		if req.QualificationStatus != domain.Qualified && req.QualificationStatus != domain.NotQualified {
			handleServiceError(w, &domain.ErrValidation{Field: "qualification_status", Message: "must be 'Qualified' or 'Not Qualified'"}, logger)
			return
		}

		resp, err := svc.API().UpdateQualification(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
