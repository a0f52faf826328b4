package handler

import (
	"net/http"
	"strings"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/service"
	"github.com/quarkfin/platform-go/internal/view"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Account: profile, credits, plans, onboarding
// ============================================================

func getProfileHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/account/profile")
		defer span.End()

		profile, ok := mountQuery(ctx, w, view.UserProfile(svc.API()), logger)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func updateProfileHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /app/account/profile")
		defer span.End()

		var req domain.UpdateUserProfileRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.API().UpdateUserProfile(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func creditsHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/account/credits")
		defer span.End()

		credits, ok := mountQuery(ctx, w, view.UserCredits(svc.API()), logger)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, credits)
	}
}

func plansHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/account/plans")
		defer span.End()

		plans, err := svc.Plans(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if plans == nil {
			plans = []domain.SubscriptionPlan{}
		}
		writeJSON(w, http.StatusOK, plans)
	}
}

func onboardingHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /app/account/onboarding")
		defer span.End()

		progress, err := svc.Onboarding(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Bool("onboarding.completed", progress.Completed))
		writeJSON(w, http.StatusOK, progress)
	}
}

// ============================================================
// Phone verification
// ============================================================

type phoneRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code,omitempty"`
}

func sendPhoneCodeHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /app/account/phone/send")
		defer span.End()

		var req phoneRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		req.Phone = strings.TrimSpace(req.Phone)
		if req.Phone == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "phone", Message: "is required"}, logger)
			return
		}

		resp, err := svc.API().SendPhoneVerification(ctx, req.Phone)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func verifyPhoneCodeHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /app/account/phone/verify")
		defer span.End()

		var req phoneRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if req.Phone == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "phone", Message: "is required"}, logger)
			return
		}
		if req.Code == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "code", Message: "is required"}, logger)
			return
		}

		resp, err := svc.API().VerifyPhoneCode(ctx, req.Phone, req.Code)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Payments
// ============================================================

func createPaymentHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /app/account/payments")
		defer span.End()

		var req domain.CreatePaymentRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := req.Validate(); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		session, err := svc.API().CreatePayment(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

func verifyPaymentHandler(svc *service.PlatformService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /app/account/payments/verify")
		defer span.End()

		var req struct {
			OrderID string `json:"order_id"`
		}
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if req.OrderID == "" {
			handleServiceError(w, &domain.ErrValidation{Field: "order_id", Message: "is required"}, logger)
			return
		}

		result, err := svc.API().VerifyPayment(ctx, req.OrderID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		// A purchase changes the active plan; drop the cached catalogue.
		svc.InvalidatePlans()
		writeJSON(w, http.StatusOK, result)
	}
}
