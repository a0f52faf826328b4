package domain

import (
	"bytes"
	"encoding/json"
)

// ============================================================
// Assessment result payloads
// ============================================================

// ResultKind discriminates the shapes an assessment result can take.
type ResultKind string

const (
	ResultNone        ResultKind = ""
	ResultWebsiteRisk ResultKind = "website_risk"
	ResultFailure     ResultKind = "failure"
	ResultUnparsed    ResultKind = "unparsed"
)

// MCCDetails is the merchant category classification of a website.
type MCCDetails struct {
	Code        string  `json:"mcc_code"`
	Description string  `json:"description,omitempty"`
	Restricted  bool    `json:"mcc_restricted"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// MerchantBusiness reports whether the merchant's country is supported.
type MerchantBusiness struct {
	CountryCode      string `json:"country_code"`
	CountrySupported bool   `json:"country_supported"`
}

// HTTPSCheck is the outcome of the transport security probe.
type HTTPSCheck struct {
	HasHTTPS  bool   `json:"has_https"`
	Protocol  string `json:"protocol,omitempty"`
	PageTitle string `json:"page_title,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PrivacyAndTerms is the outcome of the legal pages probe.
type PrivacyAndTerms struct {
	IsAccessible          bool   `json:"is_accessible"`
	SSLValid              bool   `json:"ssl_valid"`
	TermsOfServicePresent bool   `json:"terms_of_service_present"`
	PrivacyPolicyPresent  bool   `json:"privacy_policy_present"`
	LegalName             string `json:"legal_name,omitempty"`
}

// WebsiteRiskResult is the scored breakdown produced by the website scrapers.
type WebsiteRiskResult struct {
	RiskScore           int              `json:"risk_score"`
	RiskCategory        RiskCategory     `json:"risk_category"`
	RiskBreakdown       map[string]int   `json:"risk_breakdown"`
	MCC                 MCCDetails       `json:"mcc_details"`
	Merchant            MerchantBusiness `json:"merchant_business"`
	HTTPS               HTTPSCheck       `json:"https_check"`
	PrivacyAndTerms     PrivacyAndTerms  `json:"privacy_and_terms"`
	QualificationStatus string           `json:"qualification_status,omitempty"`
}

// FailureResult carries the backend's reason for a failed run.
type FailureResult struct {
	Message string `json:"message"`
}

// AssessmentResult holds exactly one known variant, or the raw payload when
// the shape is not recognised. Raw is always retained.
type AssessmentResult struct {
	Kind        ResultKind
	WebsiteRisk *WebsiteRiskResult
	Failure     *FailureResult
	Raw         json.RawMessage
}

var websiteRiskMarkers = []string{"risk_breakdown", "mcc_details", "https_check", "merchant_business"}

// UnmarshalJSON picks the variant from the keys present in the payload.
func (r *AssessmentResult) UnmarshalJSON(data []byte) error {
	*r = AssessmentResult{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	r.Raw = append(json.RawMessage(nil), trimmed...)
	r.Kind = ResultUnparsed

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return nil
	}

	for _, k := range websiteRiskMarkers {
		if _, ok := keys[k]; !ok {
			continue
		}
		var wr WebsiteRiskResult
		if err := json.Unmarshal(trimmed, &wr); err != nil {
			return nil
		}
		r.Kind = ResultWebsiteRisk
		r.WebsiteRisk = &wr
		return nil
	}

	for _, k := range []string{"error_message", "error"} {
		raw, ok := keys[k]
		if !ok {
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil || msg == "" {
			continue
		}
		r.Kind = ResultFailure
		r.Failure = &FailureResult{Message: msg}
		return nil
	}
	return nil
}

// MarshalJSON re-emits the payload as received.
func (r AssessmentResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// UnmarshalJSON decodes the report header and types the full body as its result.
func (w *WebsiteRiskReport) UnmarshalJSON(data []byte) error {
	type plain WebsiteRiskReport
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if err := p.Result.UnmarshalJSON(data); err != nil {
		return err
	}
	*w = WebsiteRiskReport(p)
	return nil
}
