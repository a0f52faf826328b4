package client

import (
	"context"
	"net/http"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/resilience"
)

const brpPath = "/api/business-risk-prevention"

// CreateBusinessRiskAssessment submits a business for assessment. Concurrent
// submissions of the same domain and type share one request.
func (c *Client) CreateBusinessRiskAssessment(ctx context.Context, in domain.CreateBusinessRiskAssessmentRequest) (*domain.BusinessRiskAssessment, error) {
	key := resilience.BusinessRiskKey(in.Domain, string(in.AssessmentType))
	return dedupe(ctx, c, "CreateBusinessRiskAssessment", key, func(ctx context.Context) (*domain.BusinessRiskAssessment, error) {
		return invoke[*domain.BusinessRiskAssessment](ctx, c, request{
			op:     "CreateBusinessRiskAssessment",
			method: http.MethodPost,
			path:   brpPath + "/assessments",
			body:   in,
		})
	})
}

// GetBusinessRiskAssessment fetches one business risk assessment.
func (c *Client) GetBusinessRiskAssessment(ctx context.Context, id string) (*domain.BusinessRiskAssessment, error) {
	return invoke[*domain.BusinessRiskAssessment](ctx, c, getBusinessRisk(id))
}

func getBusinessRisk(id string) request {
	return request{
		op:     "GetBusinessRiskAssessment",
		method: http.MethodGet,
		path:   brpPath + "/assessments/" + escape(id),
	}
}

// ListBusinessRiskAssessments lists the tenant's assessments.
func (c *Client) ListBusinessRiskAssessments(ctx context.Context) ([]domain.BusinessRiskAssessment, error) {
	return invoke[[]domain.BusinessRiskAssessment](ctx, c, request{
		op:     "ListBusinessRiskAssessments",
		method: http.MethodGet,
		path:   brpPath + "/assessments",
	})
}

// UpdateBusinessRiskAssessment edits the descriptive fields of an assessment.
func (c *Client) UpdateBusinessRiskAssessment(ctx context.Context, id string, in domain.UpdateBusinessRiskAssessmentRequest) (*domain.BusinessRiskAssessment, error) {
	return invoke[*domain.BusinessRiskAssessment](ctx, c, request{
		op:     "UpdateBusinessRiskAssessment",
		method: http.MethodPut,
		path:   brpPath + "/assessments/" + escape(id),
		body:   in,
	})
}

// DeleteBusinessRiskAssessment removes one assessment.
func (c *Client) DeleteBusinessRiskAssessment(ctx context.Context, id string) (*domain.MessageResponse, error) {
	return invoke[*domain.MessageResponse](ctx, c, request{
		op:     "DeleteBusinessRiskAssessment",
		method: http.MethodDelete,
		path:   brpPath + "/assessments/" + escape(id),
	})
}

// BulkDeleteBusinessRiskAssessments removes several assessments at once.
func (c *Client) BulkDeleteBusinessRiskAssessments(ctx context.Context, ids []string) (*domain.MessageResponse, error) {
	return invoke[*domain.MessageResponse](ctx, c, request{
		op:     "BulkDeleteBusinessRiskAssessments",
		method: http.MethodDelete,
		path:   brpPath + "/assessments/bulk",
		body:   domain.BulkDeleteRequest{IDs: ids},
	})
}

// RerunBusinessRiskAssessment restarts an assessment. Concurrent reruns of
// the same id share one request.
func (c *Client) RerunBusinessRiskAssessment(ctx context.Context, id string) (*domain.BusinessRiskAssessment, error) {
	return dedupe(ctx, c, "RerunBusinessRiskAssessment", resilience.RerunKey(id), func(ctx context.Context) (*domain.BusinessRiskAssessment, error) {
		return invoke[*domain.BusinessRiskAssessment](ctx, c, request{
			op:     "RerunBusinessRiskAssessment",
			method: http.MethodPost,
			path:   brpPath + "/assessments/" + escape(id) + "/rerun",
		})
	})
}

// PollBusinessRiskAssessment fetches the assessment until it completes or
// fails, reporting every snapshot to onUpdate.
func (c *Client) PollBusinessRiskAssessment(ctx context.Context, id string, onUpdate func(*domain.BusinessRiskAssessment), opts PollOptions) (*domain.BusinessRiskAssessment, error) {
	fetch := func(ctx context.Context) (*domain.BusinessRiskAssessment, error) {
		r := getBusinessRisk(id)
		r.single = true
		return invoke[*domain.BusinessRiskAssessment](ctx, c, r)
	}
	done := func(a *domain.BusinessRiskAssessment) bool { return a != nil && a.Status.IsTerminal() }
	return poll(ctx, c, opts, fetch, done, onUpdate)
}

// GetBusinessRiskInsights fetches the dashboard aggregates.
func (c *Client) GetBusinessRiskInsights(ctx context.Context) (*domain.BusinessRiskInsights, error) {
	return invoke[*domain.BusinessRiskInsights](ctx, c, request{
		op:     "GetBusinessRiskInsights",
		method: http.MethodGet,
		path:   brpPath + "/insights",
	})
}

// ExportBusinessRiskCSV downloads all assessments as CSV.
func (c *Client) ExportBusinessRiskCSV(ctx context.Context) (*domain.Download, error) {
	return c.download(ctx, request{
		op:     "ExportBusinessRiskCSV",
		method: http.MethodGet,
		path:   brpPath + "/export/csv",
	}, "business-risk-assessments-"+time.Now().Format("2006-01-02")+".csv")
}

// ExportBusinessRiskPDF downloads one assessment report as PDF.
func (c *Client) ExportBusinessRiskPDF(ctx context.Context, id string) (*domain.Download, error) {
	return c.download(ctx, request{
		op:     "ExportBusinessRiskPDF",
		method: http.MethodGet,
		path:   brpPath + "/assessments/" + escape(id) + "/export/pdf",
	}, "business-risk-assessment-"+id+".pdf")
}
