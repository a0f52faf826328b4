package client

import (
	"context"
	"net/http"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/resilience"
)

const websiteRiskPath = "/api/website-risk-assessment"

// SubmitWebsiteRisk queues a CRM-sourced website risk run.
func (c *Client) SubmitWebsiteRisk(ctx context.Context, in domain.WebsiteRiskRequest) (*domain.WebsiteRiskAccepted, error) {
	key := resilience.WebsiteRiskKey(in.Website, in.ID)
	return dedupe(ctx, c, "SubmitWebsiteRisk", key, func(ctx context.Context) (*domain.WebsiteRiskAccepted, error) {
		return invoke[*domain.WebsiteRiskAccepted](ctx, c, request{
			op:     "SubmitWebsiteRisk",
			method: http.MethodPost,
			path:   websiteRiskPath + "/do-assessment",
			body:   in,
		})
	})
}

// GetWebsiteRisk fetches the stored report for a website.
func (c *Client) GetWebsiteRisk(ctx context.Context, website string) (*domain.WebsiteRiskReport, error) {
	return invoke[*domain.WebsiteRiskReport](ctx, c, request{
		op:     "GetWebsiteRisk",
		method: http.MethodPost,
		path:   websiteRiskPath + "/get-assessment",
		body:   map[string]string{"website": website},
	})
}

// UpdateQualification records an analyst's manual qualification decision.
func (c *Client) UpdateQualification(ctx context.Context, in domain.QualificationUpdate) (*domain.MessageResponse, error) {
	return invoke[*domain.MessageResponse](ctx, c, request{
		op:     "UpdateQualification",
		method: http.MethodPost,
		path:   websiteRiskPath + "/manual-update",
		body:   in,
	})
}
