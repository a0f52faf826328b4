package domain

import "time"

// ============================================================
// Users, credits and plans (/api/auth)
// ============================================================

// UserProfile is the tenant user's identity and organisation record.
type UserProfile struct {
	ID                  string            `json:"id"`
	Email               string            `json:"email"`
	Phone               string            `json:"phone,omitempty"`
	FullName            string            `json:"full_name"`
	CompanyName         string            `json:"company_name,omitempty"`
	CompanySize         string            `json:"company_size,omitempty"` // startup, small, medium, enterprise
	Industry            string            `json:"industry,omitempty"`
	Country             string            `json:"country,omitempty"`
	Timezone            string            `json:"timezone,omitempty"`
	AvatarURL           string            `json:"avatar_url,omitempty"`
	PhoneVerified       bool              `json:"phone_verified"`
	EmailVerified       bool              `json:"email_verified"`
	OnboardingCompleted bool              `json:"onboarding_completed"`
	SignupMethod        string            `json:"signup_method,omitempty"` // email, google, phone
	Status              string            `json:"status,omitempty"`        // active, suspended, deleted
	CurrentPlan         *SubscriptionPlan `json:"current_plan,omitempty"`
	Credits             *UserCredits      `json:"credits,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	LastLoginAt         *time.Time        `json:"last_login_at,omitempty"`
}

// UpdateUserProfileRequest is the partial body for PUT /api/auth/profile.
type UpdateUserProfileRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	CompanySize *string `json:"company_size,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Country     *string `json:"country,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// UserCredits are the counters the backend maintains per user.
// Assessment creation debits them server-side; the client never computes them.
type UserCredits struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	MonthlyAllocation   int        `json:"monthly_allocation"`
	SubscriptionCredits int        `json:"subscription_credits"`
	RechargedCredits    int        `json:"recharged_credits"`
	BonusCredits        int        `json:"bonus_credits"`
	UsedCredits         int        `json:"used_credits"`
	TotalCredits        int        `json:"total_credits"`
	AvailableCredits    int        `json:"available_credits"`
	LastResetDate       *time.Time `json:"last_reset_date,omitempty"`
	NextResetDate       *time.Time `json:"next_reset_date,omitempty"`
}

// SubscriptionPlan describes one purchasable plan.
type SubscriptionPlan struct {
	ID                    int64    `json:"id"`
	PlanName              string   `json:"plan_name"` // Free, Startup, Pro, Enterprise
	PlanType              string   `json:"plan_type"` // free, paid
	MonthlyCredits        int      `json:"monthly_credits"`
	YearlyCredits         int      `json:"yearly_credits,omitempty"`
	MonthlyPrice          float64  `json:"monthly_price"`
	YearlyPrice           float64  `json:"yearly_price,omitempty"`
	OveragePricePerCredit float64  `json:"overage_price_per_credit,omitempty"`
	Features              []string `json:"features,omitempty"`
	IsActive              bool     `json:"is_active"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// PhoneVerificationSent is returned by POST /api/auth/send-phone-verification.
type PhoneVerificationSent struct {
	Message   string `json:"message"`
	CodeSent  bool   `json:"code_sent"`
	ExpiresAt string `json:"expires_at"`
}

// PhoneVerificationResult is returned by POST /api/auth/verify-phone-code.
type PhoneVerificationResult struct {
	Message             string `json:"message"`
	PhoneVerified       bool   `json:"phone_verified"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

// OnboardingStep is one item of the onboarding checklist.
type OnboardingStep struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// OnboardingProgress is the derived checklist for a profile.
type OnboardingProgress struct {
	Steps     []OnboardingStep `json:"steps"`
	Completed bool             `json:"completed"`
	NextStep  string           `json:"next_step,omitempty"`
}
