package domain

// ============================================================
// Website risk intake (/api/website-risk-assessment)
// Field names follow the CRM payload the backend accepts.
// ============================================================

// WebsiteRiskRequest is the body for POST …/do-assessment.
type WebsiteRiskRequest struct {
	Website            string `json:"Website"`
	ID                 string `json:"Id"`
	BillingCountryCode string `json:"BillingCountryCode"`
	Description        string `json:"Description,omitempty"`
	AnnualRevenue      string `json:"Annual_Revenue__c,omitempty"`
	SICCode            string `json:"CB_SIC_Code__c,omitempty"`
	PayMethod          string `json:"CB_Pay_Method__c,omitempty"`
}

// WebsiteRiskAccepted is returned once the backend queued the assessment.
type WebsiteRiskAccepted struct {
	Status  string `json:"status"`
	Website string `json:"website"`
	ID      string `json:"id"`
}

// QualificationStatus is the manual override applied by an analyst.
type QualificationStatus string

const (
	Qualified    QualificationStatus = "Qualified"
	NotQualified QualificationStatus = "Not Qualified"
)

// QualificationUpdate is the body for POST …/manual-update.
type QualificationUpdate struct {
	Website             string              `json:"website"`
	QualificationStatus QualificationStatus `json:"qualification_status"`
}

// WebsiteRiskReport is the stored result of a website risk run.
type WebsiteRiskReport struct {
	ID                  string           `json:"id"`
	Website             string           `json:"website"`
	DomainName          string           `json:"domain_name"`
	BillingCountryCode  string           `json:"billing_country_code"`
	Status              string           `json:"status"`
	QualificationStatus string           `json:"qualification_status,omitempty"`
	RiskScore           int              `json:"risk_score"`
	RiskCategory        RiskCategory     `json:"risk_category"`
	Result              AssessmentResult `json:"-"`
}
