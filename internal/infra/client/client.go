// Package client is the single gateway to the QuarkfinAI backend. Every
// remote operation goes through one pipeline that attaches identity, retries
// transient failures, collapses duplicate submissions and normalizes errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/identity"
	"github.com/quarkfin/platform-go/internal/infra/observability"
	"github.com/quarkfin/platform-go/internal/infra/resilience"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

// Defaults applied by New.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultPlatform = "QuarkfinAI-Web"

	// DefaultMaxBodyBytes bounds how much of a response is buffered.
	DefaultMaxBodyBytes = 32 << 20
)

// Options configures a Client. Only BaseURL is required.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Retry      resilience.Policy

	// TokenSource supplies the bearer token per call. Nil sends no token.
	TokenSource identity.TokenSource

	// Breaker, when set, wraps each retried call.
	Breaker *gobreaker.CircuitBreaker
	// Bulkhead, when set, caps concurrent in-flight requests.
	Bulkhead *resilience.Bulkhead

	// MaxBodyBytes caps a buffered response. Larger bodies fail.
	MaxBodyBytes int64

	Metrics  *observability.Metrics
	Logger   *zap.Logger
	Platform string
}

// Client talks to the QuarkfinAI backend.
type Client struct {
	baseURL  string
	http     *http.Client
	retry    resilience.Policy
	tokens   identity.TokenSource
	breaker  *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	dedup    *resilience.Deduplicator
	maxBody  int64
	metrics  *observability.Metrics
	logger   *zap.Logger
	platform string
}

// New creates a Client, filling defaults for everything but BaseURL.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	retry := opts.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = resilience.DefaultMaxAttempts
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = resilience.DefaultBaseDelay
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	platform := opts.Platform
	if platform == "" {
		platform = DefaultPlatform
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     httpClient,
		retry:    retry,
		tokens:   opts.TokenSource,
		breaker:  opts.Breaker,
		bulkhead: opts.Bulkhead,
		dedup:    resilience.NewDeduplicator(),
		maxBody:  maxBody,
		metrics:  metrics,
		logger:   logger,
		platform: platform,
	}
}

// BaseURL returns the backend origin the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// InFlight returns the number of deduplicated submissions currently running.
func (c *Client) InFlight() int { return c.dedup.InFlight() }

// request describes one backend call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any

	// single disables retry; polling loops retry at their own level.
	single bool
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// invoke runs r and decodes the unwrapped JSON payload into T.
func invoke[T any](ctx context.Context, c *Client, r request) (T, error) {
	var out T
	resp, err := c.execute(ctx, r)
	if err != nil {
		return out, err
	}

	payload, err := unwrap(resp)
	if err != nil {
		return out, c.fail(r.op, err)
	}
	if len(payload) == 0 || string(payload) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, c.fail(r.op, &domain.APIError{
			Message: fmt.Sprintf("decode %s response: %v", r.op, err),
			Code:    domain.CodeUnknown,
			Status:  resp.status,
			Details: rawIfJSON(resp.body),
		})
	}
	return out, nil
}

// download runs r and returns the body untouched.
func (c *Client) download(ctx context.Context, r request, fallbackName string) (*domain.Download, error) {
	resp, err := c.execute(ctx, r)
	if err != nil {
		return nil, err
	}
	return &domain.Download{
		Data:        resp.body,
		ContentType: resp.header.Get("Content-Type"),
		Filename:    filename(resp.header.Get("Content-Disposition"), fallbackName),
	}, nil
}

// execute applies tracing, the breaker and the retry policy around send.
// Every error it returns is an *APIError.
func (c *Client) execute(ctx context.Context, r request) (*response, error) {
	ctx, span := tracer.Start(ctx, "Client."+r.op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", r.method),
		attribute.String("http.route", r.path),
	)

	start := time.Now()
	defer func() { c.metrics.RecordRequestDuration(r.op, time.Since(start)) }()

	policy := c.retry
	if r.single {
		policy.MaxAttempts = 1
	}
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.metrics.IncrRetry(r.op)
		c.logger.Warn("retrying backend request",
			zap.String("operation", r.op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	call := func() (*response, error) {
		return resilience.Retry(ctx, policy, func(ctx context.Context, _ int) (*response, error) {
			return c.send(ctx, r)
		})
	}

	var (
		resp *response
		err  error
	)
	if c.breaker != nil {
		var v any
		v, err = c.breaker.Execute(func() (any, error) { return call() })
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &domain.APIError{
				Message: "Service temporarily unavailable - please try again shortly",
				Code:    domain.CodeNetwork,
				Details: detail(err),
			}
		}
		resp, _ = v.(*response)
	} else {
		resp, err = call()
	}

	if err != nil {
		apiErr := c.fail(r.op, err)
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Code)
		span.SetAttributes(attribute.Int("http.status_code", apiErr.Status))
		return nil, apiErr
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.status))
	c.logger.Debug("backend request completed",
		zap.String("operation", r.op),
		zap.Int("status", resp.status),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, nil
}

// send issues exactly one HTTP request.
func (c *Client) send(ctx context.Context, r request) (*response, error) {
	if c.bulkhead != nil {
		if err := c.bulkhead.Acquire(ctx); err != nil {
			return nil, Normalize(err)
		}
		defer c.bulkhead.Release()
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, &domain.APIError{Message: "encode request: " + err.Error(), Code: domain.CodeUnknown}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, Normalize(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Platform", c.platform)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", uuid.NewString())
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return nil, Normalize(fmt.Errorf("resolve bearer token: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, Normalize(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, Normalize(err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, &domain.APIError{
			Message: fmt.Sprintf("response too large: exceeds %d bytes", c.maxBody),
			Code:    domain.CodeUnknown,
			Status:  resp.StatusCode,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, FromResponse(resp.StatusCode, data)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// fail normalizes err, records it and logs it once per call.
func (c *Client) fail(op string, err error) *domain.APIError {
	apiErr := Normalize(err)
	c.metrics.IncrAPIError(apiErr.Code)

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("code", apiErr.Code),
		zap.Int("status", apiErr.Status),
		zap.String("message", apiErr.Message),
	}
	switch {
	case apiErr.Code == domain.CodeCancelled:
		c.logger.Debug("backend request cancelled", fields...)
	case apiErr.Status >= 400 && apiErr.Status < 500:
		c.logger.Warn("backend request failed", fields...)
	default:
		c.logger.Error("backend request failed", fields...)
	}
	return apiErr
}

// unwrap strips the {data, status} envelope some endpoints use.
// Bodies without both keys are the payload itself.
func unwrap(resp *response) (json.RawMessage, error) {
	body := bytes.TrimSpace(resp.body)
	if len(body) == 0 || body[0] != '{' {
		return body, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return body, nil
	}
	data, hasData := env["data"]
	rawStatus, hasStatus := env["status"]
	if !hasData || !hasStatus {
		return body, nil
	}

	// A status that is not a string (HTTP code, boolean) is payload, not an
	// error marker.
	var status string
	if err := json.Unmarshal(rawStatus, &status); err != nil {
		return data, nil
	}
	if status == "error" {
		apiErr := FromResponse(resp.status, body)
		if apiErr.Code == domain.HTTPCode(resp.status) {
			apiErr.Code = domain.CodeUnknown
		}
		return nil, apiErr
	}
	return data, nil
}

func filename(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return fallback
	}
	return params["filename"]
}

func rawIfJSON(b []byte) json.RawMessage {
	if len(b) == 0 || !json.Valid(b) {
		return nil
	}
	return json.RawMessage(b)
}

// dedupe collapses identical in-flight submissions of one caller under key.
func dedupe[T any](ctx context.Context, c *Client, op, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			var zero T
			return zero, c.fail(op, fmt.Errorf("resolve bearer token: %w", err))
		}
		key = resilience.CallerKey(token, key)
	}
	v, shared, err := resilience.Dedupe(ctx, c.dedup, key, fn)
	if shared {
		c.metrics.IncrDedupShared(op)
	}
	if err != nil {
		return v, Normalize(err)
	}
	return v, nil
}

func escape(s string) string { return url.PathEscape(s) }
