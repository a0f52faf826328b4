package client

import (
	"context"
	"net/http"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/resilience"
)

const authPath = "/api/auth"

// GetUserProfile fetches the signed-in user's profile.
func (c *Client) GetUserProfile(ctx context.Context) (*domain.UserProfile, error) {
	return invoke[*domain.UserProfile](ctx, c, request{op: "GetUserProfile", method: http.MethodGet, path: authPath + "/profile"})
}

// UpdateUserProfile applies a partial profile update.
func (c *Client) UpdateUserProfile(ctx context.Context, in domain.UpdateUserProfileRequest) (*domain.MessageResponse, error) {
	return invoke[*domain.MessageResponse](ctx, c, request{
		op:     "UpdateUserProfile",
		method: http.MethodPut,
		path:   authPath + "/profile",
		body:   in,
	})
}

// GetUserCredits fetches the user's credit counters.
func (c *Client) GetUserCredits(ctx context.Context) (*domain.UserCredits, error) {
	return invoke[*domain.UserCredits](ctx, c, request{op: "GetUserCredits", method: http.MethodGet, path: authPath + "/credits"})
}

// GetSubscriptionPlans lists the purchasable plans.
func (c *Client) GetSubscriptionPlans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	return invoke[[]domain.SubscriptionPlan](ctx, c, request{op: "GetSubscriptionPlans", method: http.MethodGet, path: authPath + "/plans"})
}

// SendPhoneVerification sends an OTP to phone. Repeated taps while a send is
// in flight share one request so the user receives one code.
func (c *Client) SendPhoneVerification(ctx context.Context, phone string) (*domain.PhoneVerificationSent, error) {
	return dedupe(ctx, c, "SendPhoneVerification", resilience.PhoneVerificationKey(phone), func(ctx context.Context) (*domain.PhoneVerificationSent, error) {
		return invoke[*domain.PhoneVerificationSent](ctx, c, request{
			op:     "SendPhoneVerification",
			method: http.MethodPost,
			path:   authPath + "/send-phone-verification",
			body:   map[string]string{"phone": phone},
		})
	})
}

// VerifyPhoneCode checks the OTP the user typed.
func (c *Client) VerifyPhoneCode(ctx context.Context, phone, code string) (*domain.PhoneVerificationResult, error) {
	return invoke[*domain.PhoneVerificationResult](ctx, c, request{
		op:     "VerifyPhoneCode",
		method: http.MethodPost,
		path:   authPath + "/verify-phone-code",
		body:   map[string]string{"phone": phone, "code": code},
	})
}

// CreatePayment opens a hosted checkout for a plan.
func (c *Client) CreatePayment(ctx context.Context, in domain.CreatePaymentRequest) (*domain.PaymentSession, error) {
	return invoke[*domain.PaymentSession](ctx, c, request{
		op:     "CreatePayment",
		method: http.MethodPost,
		path:   "/api/payments/create",
		body:   in,
	})
}

// VerifyPayment confirms a checkout order and credits the account.
func (c *Client) VerifyPayment(ctx context.Context, orderID string) (*domain.PaymentVerification, error) {
	return invoke[*domain.PaymentVerification](ctx, c, request{
		op:     "VerifyPayment",
		method: http.MethodPost,
		path:   "/api/payments/verify",
		body:   map[string]string{"order_id": orderID},
	})
}
