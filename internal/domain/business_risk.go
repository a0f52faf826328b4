package domain

import "time"

// ============================================================
// Business risk prevention (/api/business-risk-prevention)
// ============================================================

// AssessmentType selects the depth of a business risk assessment.
type AssessmentType string

const (
	AssessmentComprehensive AssessmentType = "Comprehensive"
	AssessmentQuickScan     AssessmentType = "Quick Scan"
)

// BusinessRiskStatus is the lifecycle state of a business risk assessment.
type BusinessRiskStatus string

const (
	BusinessRiskPending    BusinessRiskStatus = "Pending"
	BusinessRiskInProgress BusinessRiskStatus = "In Progress"
	BusinessRiskCompleted  BusinessRiskStatus = "Completed"
	BusinessRiskFailed     BusinessRiskStatus = "Failed"
)

// IsTerminal reports whether the backend will no longer change the status.
func (s BusinessRiskStatus) IsTerminal() bool {
	return s == BusinessRiskCompleted || s == BusinessRiskFailed
}

// Rank orders statuses along the lifecycle. Unknown values rank lowest.
func (s BusinessRiskStatus) Rank() int {
	switch s {
	case BusinessRiskPending:
		return 1
	case BusinessRiskInProgress:
		return 2
	case BusinessRiskCompleted, BusinessRiskFailed:
		return 3
	}
	return 0
}

// RiskLevel is the business-facing risk grade.
type RiskLevel string

const (
	RiskLevelLow     RiskLevel = "Low"
	RiskLevelMedium  RiskLevel = "Medium"
	RiskLevelHigh    RiskLevel = "High"
	RiskLevelPending RiskLevel = "Pending"
)

// Findings summarises the issue counts of a completed assessment.
type Findings struct {
	CriticalIssues  int `json:"critical_issues"`
	Warnings        int `json:"warnings"`
	Recommendations int `json:"recommendations"`
}

// BusinessRiskAssessment is the primary product entity.
type BusinessRiskAssessment struct {
	ID             string             `json:"id"`
	BusinessName   string             `json:"business_name"`
	Domain         string             `json:"domain"`
	Industry       string             `json:"industry"`
	Geography      string             `json:"geography"`
	AssessmentType AssessmentType     `json:"assessment_type"`
	Status         BusinessRiskStatus `json:"status"`
	RiskLevel      RiskLevel          `json:"risk_level"`
	RiskScore      float64            `json:"risk_score"`
	Findings       Findings           `json:"findings"`
	RiskFactors    map[string]float64 `json:"risk_factors,omitempty"`
	Description    string             `json:"description,omitempty"`
	DateCreated    time.Time          `json:"date_created"`
	LastUpdated    time.Time          `json:"last_updated"`
}

// CreateBusinessRiskAssessmentRequest is the body for POST …/assessments.
type CreateBusinessRiskAssessmentRequest struct {
	BusinessName   string         `json:"business_name"`
	Domain         string         `json:"domain"`
	Industry       string         `json:"industry"`
	Geography      string         `json:"geography"`
	AssessmentType AssessmentType `json:"assessment_type"`
	Description    string         `json:"description,omitempty"`
}

// Validate checks the fields the backend requires.
func (r *CreateBusinessRiskAssessmentRequest) Validate() error {
	if r.BusinessName == "" {
		return &ErrValidation{Field: "business_name", Message: "is required"}
	}
	if r.Domain == "" {
		return &ErrValidation{Field: "domain", Message: "is required"}
	}
	switch r.AssessmentType {
	case AssessmentComprehensive, AssessmentQuickScan:
	default:
		return &ErrValidation{Field: "assessment_type", Message: "must be 'Comprehensive' or 'Quick Scan'"}
	}
	return nil
}

// UpdateBusinessRiskAssessmentRequest is the body for PUT …/assessments/{id}.
// Nil fields are left untouched by the backend.
type UpdateBusinessRiskAssessmentRequest struct {
	BusinessName *string `json:"business_name,omitempty"`
	Industry     *string `json:"industry,omitempty"`
	Geography    *string `json:"geography,omitempty"`
	Description  *string `json:"description,omitempty"`
}

// BulkDeleteRequest is the body for DELETE …/assessments/bulk.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// RiskTrend is one month of the average-score series.
type RiskTrend struct {
	Month string  `json:"month"`
	Score float64 `json:"score"`
}

// RiskCategoryCount is one bucket of the top risk categories chart.
type RiskCategoryCount struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// BusinessRiskInsights aggregates a tenant's assessments for the dashboard.
type BusinessRiskInsights struct {
	TotalAssessments   int                 `json:"total_assessments"`
	HighRiskBusinesses int                 `json:"high_risk_businesses"`
	AverageRiskScore   float64             `json:"average_risk_score"`
	RiskTrends         []RiskTrend         `json:"risk_trends"`
	TopRiskCategories  []RiskCategoryCount `json:"top_risk_categories"`
	SuccessRate        float64             `json:"success_rate,omitempty"`
	ProcessingTimeAvg  float64             `json:"processing_time_avg,omitempty"`
}
