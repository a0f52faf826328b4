package view

import (
	"context"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/port"
)

// Assessments lists generic assessments.
func Assessments(api port.AssessmentAPI, params domain.ListAssessmentsParams) *Query[[]domain.Assessment] {
	return NewQuery(func(ctx context.Context) ([]domain.Assessment, error) {
		return api.ListAssessments(ctx, params)
	})
}

// Assessment loads one generic assessment.
func Assessment(api port.AssessmentAPI, id int64) *Query[*domain.Assessment] {
	return NewQuery(func(ctx context.Context) (*domain.Assessment, error) {
		return api.GetAssessment(ctx, id)
	})
}

// CreateAssessment submits a generic assessment.
func CreateAssessment(api port.AssessmentAPI) *Mutation[domain.CreateAssessmentRequest, *domain.Assessment] {
	return NewMutation(api.CreateAssessment)
}

// AssessmentPolling follows a generic assessment to completion.
func AssessmentPolling(api port.AssessmentPoller, id int64, opts domain.PollOptions, notify func(*domain.Assessment)) *Poller[*domain.Assessment] {
	return NewPoller(func(ctx context.Context, onUpdate func(*domain.Assessment)) (*domain.Assessment, error) {
		return api.PollAssessmentStatus(ctx, id, onUpdate, opts)
	}, func(a *domain.Assessment) int {
		if a == nil {
			return 0
		}
		return a.Status.Rank()
	}, notify)
}

// BusinessRiskAssessments lists the tenant's business risk assessments.
func BusinessRiskAssessments(api port.BusinessRiskAPI) *Query[[]domain.BusinessRiskAssessment] {
	return NewQuery(api.ListBusinessRiskAssessments)
}

// BusinessRiskAssessment loads one business risk assessment.
func BusinessRiskAssessment(api port.BusinessRiskAPI, id string) *Query[*domain.BusinessRiskAssessment] {
	return NewQuery(func(ctx context.Context) (*domain.BusinessRiskAssessment, error) {
		return api.GetBusinessRiskAssessment(ctx, id)
	})
}

// CreateBusinessRiskAssessment submits a business risk assessment.
func CreateBusinessRiskAssessment(api port.BusinessRiskAPI) *Mutation[domain.CreateBusinessRiskAssessmentRequest, *domain.BusinessRiskAssessment] {
	return NewMutation(api.CreateBusinessRiskAssessment)
}

// RerunBusinessRiskAssessment restarts an assessment by id.
func RerunBusinessRiskAssessment(api port.BusinessRiskAPI) *Mutation[string, *domain.BusinessRiskAssessment] {
	return NewMutation(api.RerunBusinessRiskAssessment)
}

// BusinessRiskPolling follows a business risk assessment to completion.
func BusinessRiskPolling(api port.AssessmentPoller, id string, opts domain.PollOptions, notify func(*domain.BusinessRiskAssessment)) *Poller[*domain.BusinessRiskAssessment] {
	return NewPoller(func(ctx context.Context, onUpdate func(*domain.BusinessRiskAssessment)) (*domain.BusinessRiskAssessment, error) {
		return api.PollBusinessRiskAssessment(ctx, id, onUpdate, opts)
	}, func(a *domain.BusinessRiskAssessment) int {
		if a == nil {
			return 0
		}
		return a.Status.Rank()
	}, notify)
}

// BusinessRiskInsights loads the dashboard aggregates.
func BusinessRiskInsights(api port.BusinessRiskAPI) *Query[*domain.BusinessRiskInsights] {
	return NewQuery(api.GetBusinessRiskInsights)
}

// APIHealth pings the backend. It is not loaded on mount by the health screen.
func APIHealth(api port.HealthChecker) *Query[*domain.Ping] {
	return NewQuery(api.HealthCheck)
}

// UserProfile loads the signed-in user's profile.
func UserProfile(api port.AccountAPI) *Query[*domain.UserProfile] {
	return NewQuery(api.GetUserProfile)
}

// UserCredits loads the signed-in user's credits.
func UserCredits(api port.AccountAPI) *Query[*domain.UserCredits] {
	return NewQuery(api.GetUserCredits)
}
