// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service and
// handler layers from the concrete backend client.
package port

import (
	"context"

	"github.com/quarkfin/platform-go/internal/domain"
)

// HealthChecker probes backend reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*domain.Ping, error)
}

// AssessmentAPI covers the generic website assessments.
type AssessmentAPI interface {
	CreateAssessment(ctx context.Context, in domain.CreateAssessmentRequest) (*domain.Assessment, error)
	GetAssessment(ctx context.Context, id int64) (*domain.Assessment, error)
	ListAssessments(ctx context.Context, params domain.ListAssessmentsParams) ([]domain.Assessment, error)
}

// BusinessRiskAPI covers the business risk prevention product.
type BusinessRiskAPI interface {
	CreateBusinessRiskAssessment(ctx context.Context, in domain.CreateBusinessRiskAssessmentRequest) (*domain.BusinessRiskAssessment, error)
	GetBusinessRiskAssessment(ctx context.Context, id string) (*domain.BusinessRiskAssessment, error)
	ListBusinessRiskAssessments(ctx context.Context) ([]domain.BusinessRiskAssessment, error)
	UpdateBusinessRiskAssessment(ctx context.Context, id string, in domain.UpdateBusinessRiskAssessmentRequest) (*domain.BusinessRiskAssessment, error)
	DeleteBusinessRiskAssessment(ctx context.Context, id string) (*domain.MessageResponse, error)
	BulkDeleteBusinessRiskAssessments(ctx context.Context, ids []string) (*domain.MessageResponse, error)
	RerunBusinessRiskAssessment(ctx context.Context, id string) (*domain.BusinessRiskAssessment, error)
	GetBusinessRiskInsights(ctx context.Context) (*domain.BusinessRiskInsights, error)
	ExportBusinessRiskCSV(ctx context.Context) (*domain.Download, error)
	ExportBusinessRiskPDF(ctx context.Context, id string) (*domain.Download, error)
}

// AccountAPI covers the signed-in user's profile, credits, plans and payments.
type AccountAPI interface {
	GetUserProfile(ctx context.Context) (*domain.UserProfile, error)
	UpdateUserProfile(ctx context.Context, in domain.UpdateUserProfileRequest) (*domain.MessageResponse, error)
	GetUserCredits(ctx context.Context) (*domain.UserCredits, error)
	GetSubscriptionPlans(ctx context.Context) ([]domain.SubscriptionPlan, error)
	SendPhoneVerification(ctx context.Context, phone string) (*domain.PhoneVerificationSent, error)
	VerifyPhoneCode(ctx context.Context, phone, code string) (*domain.PhoneVerificationResult, error)
	CreatePayment(ctx context.Context, in domain.CreatePaymentRequest) (*domain.PaymentSession, error)
	VerifyPayment(ctx context.Context, orderID string) (*domain.PaymentVerification, error)
}

// WebsiteRiskAPI covers the CRM-driven website risk intake.
type WebsiteRiskAPI interface {
	SubmitWebsiteRisk(ctx context.Context, in domain.WebsiteRiskRequest) (*domain.WebsiteRiskAccepted, error)
	GetWebsiteRisk(ctx context.Context, website string) (*domain.WebsiteRiskReport, error)
	UpdateQualification(ctx context.Context, in domain.QualificationUpdate) (*domain.MessageResponse, error)
}

// PlatformAPI is the whole backend surface. Implemented by *client.Client.
type PlatformAPI interface {
	HealthChecker
	AssessmentAPI
	BusinessRiskAPI
	AccountAPI
	WebsiteRiskAPI
	AssessmentPoller
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, bool, error)
}

// SessionVerifier turns a bearer token into a verified session.
type SessionVerifier interface {
	Verify(ctx context.Context, raw string) (*domain.Session, error)
}

// AssessmentPoller follows assessments until the backend settles them.
type AssessmentPoller interface {
	PollAssessmentStatus(ctx context.Context, id int64, onUpdate func(*domain.Assessment), opts domain.PollOptions) (*domain.Assessment, error)
	PollBusinessRiskAssessment(ctx context.Context, id string, onUpdate func(*domain.BusinessRiskAssessment), opts domain.PollOptions) (*domain.BusinessRiskAssessment, error)
}
