package domain

import "time"

// ============================================================
// Website risk assessment (generic variant, /api/v1/assessments)
// ============================================================

// AssessmentStatus is the lifecycle state of a generic assessment.
type AssessmentStatus string

const (
	AssessmentPending    AssessmentStatus = "pending"
	AssessmentProcessing AssessmentStatus = "processing"
	AssessmentCompleted  AssessmentStatus = "completed"
	AssessmentFailed     AssessmentStatus = "failed"
)

// IsTerminal reports whether the backend will no longer change the status.
func (s AssessmentStatus) IsTerminal() bool {
	return s == AssessmentCompleted || s == AssessmentFailed
}

// Rank orders statuses along the lifecycle. Unknown values rank lowest.
func (s AssessmentStatus) Rank() int {
	switch s {
	case AssessmentPending:
		return 1
	case AssessmentProcessing:
		return 2
	case AssessmentCompleted, AssessmentFailed:
		return 3
	}
	return 0
}

// RiskCategory is the coarse risk bucket reported for a website.
type RiskCategory string

const (
	RiskLow    RiskCategory = "low_risk"
	RiskMedium RiskCategory = "med_risk"
	RiskHigh   RiskCategory = "high_risk"
)

// Label returns the human-readable category name.
func (c RiskCategory) Label() string {
	switch c {
	case RiskLow:
		return "Low Risk"
	case RiskMedium:
		return "Medium Risk"
	case RiskHigh:
		return "High Risk"
	}
	return "Unknown"
}

// Color returns the display colour used by dashboards for the category.
func (c RiskCategory) Color() string {
	switch c {
	case RiskLow:
		return "green"
	case RiskMedium:
		return "yellow"
	case RiskHigh:
		return "red"
	}
	return "gray"
}

// Assessment is a website-risk job tracked through pending → processing → completed|failed.
type Assessment struct {
	ID           int64            `json:"id"`
	Website      string           `json:"website"`
	CountryCode  string           `json:"country_code"`
	Status       AssessmentStatus `json:"status"`
	RiskCategory RiskCategory     `json:"risk_category,omitempty"`
	RiskScore    *float64         `json:"risk_score,omitempty"`
	Results      AssessmentResult `json:"results,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CreateAssessmentRequest is the body for POST /api/v1/assessments.
type CreateAssessmentRequest struct {
	Website     string `json:"website"`
	CountryCode string `json:"country_code"`
	Description string `json:"description,omitempty"`
}

// Validate checks the fields the backend requires.
func (r *CreateAssessmentRequest) Validate() error {
	if r.Website == "" {
		return &ErrValidation{Field: "website", Message: "is required"}
	}
	if r.CountryCode == "" {
		return &ErrValidation{Field: "country_code", Message: "is required"}
	}
	return nil
}

// ListAssessmentsParams filters GET /api/v1/assessments. Zero values are omitted.
type ListAssessmentsParams struct {
	Limit        int
	Offset       int
	Status       AssessmentStatus
	CountryCode  string
	RiskCategory RiskCategory
}
