// Package service composes backend calls into the payloads portal screens need.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/observability"
	"github.com/quarkfin/platform-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/platform")

const plansCacheKey = "plans"

// PlatformService orchestrates multi-call screens on top of the backend client.
type PlatformService struct {
	api     port.PlatformAPI
	plans   port.Cache[[]domain.SubscriptionPlan]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewPlatformService creates the service with all dependencies injected.
func NewPlatformService(
	api port.PlatformAPI,
	plans port.Cache[[]domain.SubscriptionPlan],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PlatformService {
	return &PlatformService{api: api, plans: plans, metrics: metrics, logger: logger}
}

// API exposes the underlying backend client for pass-through routes.
func (s *PlatformService) API() port.PlatformAPI { return s.api }

// Dashboard loads insights, the assessment list and credits concurrently.
// Any failure fails the whole dashboard.
func (s *PlatformService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "PlatformService.Dashboard")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	var dash domain.Dashboard
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		insights, err := s.api.GetBusinessRiskInsights(gCtx)
		if err != nil {
			return fmt.Errorf("insights: %w", err)
		}
		dash.Insights = insights
		return nil
	})

	g.Go(func() error {
		list, err := s.api.ListBusinessRiskAssessments(gCtx)
		if err != nil {
			return fmt.Errorf("assessments: %w", err)
		}
		dash.Assessments = list
		return nil
	})

	g.Go(func() error {
		credits, err := s.api.GetUserCredits(gCtx)
		if err != nil {
			return fmt.Errorf("credits: %w", err)
		}
		dash.Credits = credits
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard load failed", zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("assessments.count", len(dash.Assessments)))
	return &dash, nil
}

// Plans returns the subscription plan catalogue, cached.
func (s *PlatformService) Plans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	ctx, span := tracer.Start(ctx, "PlatformService.Plans")
	defer span.End()

	plans, hit, err := s.plans.GetOrLoad(ctx, plansCacheKey, s.api.GetSubscriptionPlans)
	if hit {
		s.metrics.IncrCacheHit("plans")
	} else {
		s.metrics.IncrCacheMiss("plans")
	}
	if err != nil {
		return nil, fmt.Errorf("plans fetch: %w", err)
	}
	return plans, nil
}

// InvalidatePlans drops the cached catalogue, e.g. after a purchase.
func (s *PlatformService) InvalidatePlans() {
	s.plans.Delete(plansCacheKey)
}

// Onboarding derives the onboarding checklist from the user's profile.
func (s *PlatformService) Onboarding(ctx context.Context) (*domain.OnboardingProgress, error) {
	ctx, span := tracer.Start(ctx, "PlatformService.Onboarding")
	defer span.End()

	profile, err := s.api.GetUserProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile fetch: %w", err)
	}
	return OnboardingFor(profile), nil
}

// Onboarding step ids, in order.
const (
	StepSignup          = "signup"
	StepEmailVerify     = "email_verify"
	StepPhoneAdd        = "phone_add"
	StepPhoneVerify     = "phone_verify"
	StepProfileComplete = "profile_complete"
	StepPlanSelect      = "plan_select"
)

// OnboardingFor builds the checklist for p.
func OnboardingFor(p *domain.UserProfile) *domain.OnboardingProgress {
	steps := []domain.OnboardingStep{
		{ID: StepSignup, Name: "Create Account", Completed: p != nil},
		{ID: StepEmailVerify, Name: "Verify Email", Completed: p != nil && p.EmailVerified},
		{ID: StepPhoneAdd, Name: "Add Phone Number", Completed: p != nil && p.Phone != ""},
		{ID: StepPhoneVerify, Name: "Verify Phone", Completed: p != nil && p.PhoneVerified},
		{ID: StepProfileComplete, Name: "Complete Profile", Completed: p != nil &&
			p.CompanyName != "" && p.CompanySize != "" && p.Industry != "" && p.Country != ""},
		{ID: StepPlanSelect, Name: "Choose Plan", Completed: p != nil && p.CurrentPlan != nil},
	}

	progress := &domain.OnboardingProgress{Steps: steps, Completed: true}
	for _, st := range steps {
		if !st.Completed {
			progress.Completed = false
			progress.NextStep = st.ID
			break
		}
	}
	// The backend flag wins once set; the checklist is advisory.
	if p != nil && p.OnboardingCompleted {
		progress.Completed = true
		progress.NextStep = ""
	}
	return progress
}
