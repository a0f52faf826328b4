package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/cache"
	"github.com/quarkfin/platform-go/internal/infra/observability"
	"github.com/quarkfin/platform-go/internal/port"
	"github.com/quarkfin/platform-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

// mockAPI implements only what the service calls; anything else panics.
type mockAPI struct {
	port.PlatformAPI

	insights    *domain.BusinessRiskInsights
	assessments []domain.BusinessRiskAssessment
	credits     *domain.UserCredits
	creditsErr  error
	profile     *domain.UserProfile
	plans       []domain.SubscriptionPlan
	planCalls   atomic.Int32
}

func (m *mockAPI) GetBusinessRiskInsights(context.Context) (*domain.BusinessRiskInsights, error) {
	return m.insights, nil
}

func (m *mockAPI) ListBusinessRiskAssessments(context.Context) ([]domain.BusinessRiskAssessment, error) {
	return m.assessments, nil
}

func (m *mockAPI) GetUserCredits(context.Context) (*domain.UserCredits, error) {
	return m.credits, m.creditsErr
}

func (m *mockAPI) GetUserProfile(context.Context) (*domain.UserProfile, error) {
	return m.profile, nil
}

func (m *mockAPI) GetSubscriptionPlans(context.Context) ([]domain.SubscriptionPlan, error) {
	m.planCalls.Add(1)
	return m.plans, nil
}

func newService(t *testing.T, api *mockAPI) (*service.PlatformService, *observability.Metrics) {
	t.Helper()
	plans := cache.New[[]domain.SubscriptionPlan](5 * time.Minute)
	t.Cleanup(plans.Close)
	metrics := observability.NewMetrics()
	return service.NewPlatformService(api, plans, metrics, zap.NewNop()), metrics
}

// --- Tests ---

func TestDashboard_Success(t *testing.T) {
	api := &mockAPI{
		insights:    &domain.BusinessRiskInsights{TotalAssessments: 2},
		assessments: []domain.BusinessRiskAssessment{{ID: "a"}, {ID: "b"}},
		credits:     &domain.UserCredits{AvailableCredits: 40},
	}
	svc, _ := newService(t, api)

	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if dash.Insights.TotalAssessments != 2 || len(dash.Assessments) != 2 || dash.Credits.AvailableCredits != 40 {
		t.Errorf("unexpected dashboard %+v", dash)
	}
}

func TestDashboard_FailureKeepsAPIError(t *testing.T) {
	apiErr := &domain.APIError{Message: "Unauthorized", Code: "HTTP_401", Status: 401}
	api := &mockAPI{
		insights:   &domain.BusinessRiskInsights{},
		credits:    nil,
		creditsErr: apiErr,
	}
	svc, _ := newService(t, api)

	_, err := svc.Dashboard(context.Background())
	var got *domain.APIError
	if !errors.As(err, &got) || got.Status != 401 {
		t.Fatalf("expected wrapped APIError 401, got %v", err)
	}
}

func TestDashboard_CancelledContext(t *testing.T) {
	svc, _ := newService(t, &mockAPI{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Dashboard(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPlans_Cached(t *testing.T) {
	api := &mockAPI{plans: []domain.SubscriptionPlan{{ID: 1, PlanName: "Free"}, {ID: 2, PlanName: "Pro"}}}
	svc, metrics := newService(t, api)

	for i := 0; i < 3; i++ {
		plans, err := svc.Plans(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(plans) != 2 {
			t.Fatalf("expected 2 plans, got %d", len(plans))
		}
	}
	if api.planCalls.Load() != 1 {
		t.Errorf("expected a single backend call, got %d", api.planCalls.Load())
	}
	if metrics.CacheHitCount("plans") != 2 {
		t.Errorf("expected 2 cache hits, got %v", metrics.CacheHitCount("plans"))
	}

	svc.InvalidatePlans()
	if _, err := svc.Plans(context.Background()); err != nil {
		t.Fatal(err)
	}
	if api.planCalls.Load() != 2 {
		t.Errorf("expected reload after invalidation, got %d calls", api.planCalls.Load())
	}
}

func TestOnboarding_NextStep(t *testing.T) {
	api := &mockAPI{profile: &domain.UserProfile{
		ID:            "u1",
		EmailVerified: true,
		Phone:         "+15555550100",
	}}
	svc, _ := newService(t, api)

	progress, err := svc.Onboarding(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if progress.Completed {
		t.Error("expected onboarding incomplete")
	}
	if progress.NextStep != service.StepPhoneVerify {
		t.Errorf("expected next step phone_verify, got %q", progress.NextStep)
	}
	if len(progress.Steps) != 6 {
		t.Errorf("expected 6 steps, got %d", len(progress.Steps))
	}
}

func TestOnboardingFor(t *testing.T) {
	full := &domain.UserProfile{
		EmailVerified: true,
		Phone:         "+15555550100",
		PhoneVerified: true,
		CompanyName:   "Acme",
		CompanySize:   "small",
		Industry:      "Technology",
		Country:       "US",
		CurrentPlan:   &domain.SubscriptionPlan{PlanName: "Pro"},
	}
	if p := service.OnboardingFor(full); !p.Completed || p.NextStep != "" {
		t.Errorf("expected complete checklist, got %+v", p)
	}

	flagged := &domain.UserProfile{OnboardingCompleted: true}
	if p := service.OnboardingFor(flagged); !p.Completed {
		t.Error("expected backend flag to mark onboarding complete")
	}

	if p := service.OnboardingFor(nil); p.NextStep != service.StepSignup {
		t.Errorf("expected signup first for missing profile, got %q", p.NextStep)
	}
}
