package domain

// ============================================================
// Plan purchase (/api/payments)
// ============================================================

// BillingCycle selects monthly or yearly pricing of a plan.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// CreatePaymentRequest is the body for POST /api/payments/create.
type CreatePaymentRequest struct {
	PlanID       string       `json:"plan_id"`
	BillingCycle BillingCycle `json:"billing_cycle"`
}

// Validate checks the fields the payment gateway requires.
func (r *CreatePaymentRequest) Validate() error {
	if r.PlanID == "" {
		return &ErrValidation{Field: "plan_id", Message: "is required"}
	}
	switch r.BillingCycle {
	case BillingMonthly, BillingYearly:
	default:
		return &ErrValidation{Field: "billing_cycle", Message: "must be 'monthly' or 'yearly'"}
	}
	return nil
}

// PaymentSession points the user at the hosted checkout page.
type PaymentSession struct {
	PaymentURL string `json:"payment_url"`
	OrderID    string `json:"order_id"`
}

// PaymentVerification is returned once the gateway confirmed an order.
type PaymentVerification struct {
	Status       string `json:"status"`
	CreditsAdded int    `json:"credits_added"`
}
