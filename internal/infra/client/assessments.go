package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/resilience"
)

const assessmentsPath = "/api/v1/assessments"

// CreateAssessment submits a website for assessment. Concurrent submissions of
// the same website and country share one request.
func (c *Client) CreateAssessment(ctx context.Context, in domain.CreateAssessmentRequest) (*domain.Assessment, error) {
	key := resilience.AssessmentKey(in.Website, in.CountryCode)
	return dedupe(ctx, c, "CreateAssessment", key, func(ctx context.Context) (*domain.Assessment, error) {
		return invoke[*domain.Assessment](ctx, c, request{
			op:     "CreateAssessment",
			method: http.MethodPost,
			path:   assessmentsPath,
			body:   in,
		})
	})
}

// GetAssessment fetches one assessment.
func (c *Client) GetAssessment(ctx context.Context, id int64) (*domain.Assessment, error) {
	return invoke[*domain.Assessment](ctx, c, getAssessment(id))
}

func getAssessment(id int64) request {
	return request{
		op:     "GetAssessment",
		method: http.MethodGet,
		path:   assessmentsPath + "/" + strconv.FormatInt(id, 10),
	}
}

// ListAssessments lists assessments matching params. Zero-valued filters are
// not sent.
func (c *Client) ListAssessments(ctx context.Context, params domain.ListAssessmentsParams) ([]domain.Assessment, error) {
	q := url.Values{}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.Status != "" {
		q.Set("status", string(params.Status))
	}
	if params.CountryCode != "" {
		q.Set("country_code", params.CountryCode)
	}
	if params.RiskCategory != "" {
		q.Set("risk_category", string(params.RiskCategory))
	}

	return invoke[[]domain.Assessment](ctx, c, request{
		op:     "ListAssessments",
		method: http.MethodGet,
		path:   assessmentsPath,
		query:  q,
	})
}

// PollAssessmentStatus fetches the assessment until it completes or fails,
// reporting every snapshot to onUpdate.
func (c *Client) PollAssessmentStatus(ctx context.Context, id int64, onUpdate func(*domain.Assessment), opts PollOptions) (*domain.Assessment, error) {
	fetch := func(ctx context.Context) (*domain.Assessment, error) {
		r := getAssessment(id)
		r.single = true
		return invoke[*domain.Assessment](ctx, c, r)
	}
	done := func(a *domain.Assessment) bool { return a != nil && a.Status.IsTerminal() }
	return poll(ctx, c, opts, fetch, done, onUpdate)
}
