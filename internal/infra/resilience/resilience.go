// Package resilience provides fault-tolerance patterns:
// retry with linear backoff, request deduplication, circuit breaker, and bulkhead.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"

	"github.com/sony/gobreaker"
)

// Default retry and concurrency parameters.
const (
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = time.Second
	DefaultMaxConcurrency = 50
)

// Config holds resilience parameters.
type Config struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxConcurrency int
}

// Policy decides how a failed call is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// ShouldRetry classifies an error. Defaults to IsRetryable.
	ShouldRetry func(err error) bool

	// Wait blocks for d or until ctx is done. Defaults to a timer wait.
	Wait func(ctx context.Context, d time.Duration) error

	// OnRetry is called before each wait with the attempt about to run.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NewPolicy builds a policy from Config, filling defaults.
func NewPolicy(cfg Config) Policy {
	p := Policy{MaxAttempts: cfg.MaxAttempts, BaseDelay: cfg.BaseDelay}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	return p
}

// Delay is the wait before the given attempt (1-based). The first attempt
// runs immediately; attempt n waits (n-1) * base.
func Delay(attempt int, base time.Duration) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return time.Duration(attempt-1) * base
}

// IsRetryable reports whether a normalized failure may be transient.
// Client errors the caller cannot fix by repeating, timeouts (the request may
// already have taken effect) and cancellations are final.
func IsRetryable(err error) bool {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		return !errors.Is(err, context.Canceled)
	}
	// The backend answered with success; the body was unusable and will be
	// the same next time.
	if apiErr.Status >= 200 && apiErr.Status < 300 {
		return false
	}
	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	switch apiErr.Code {
	case domain.CodeTimeout, domain.CodeCancelled:
		return false
	}
	return true
}

// Retry executes fn up to MaxAttempts times while failures are retryable,
// returning the last error once attempts are exhausted.
// It respects context cancellation.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	shouldRetry := p.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}
	wait := p.Wait
	if wait == nil {
		wait = sleep
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			d := Delay(attempt, p.BaseDelay)
			if p.OnRetry != nil {
				p.OnRetry(attempt, d, lastErr)
			}
			if err := wait(ctx, d); err != nil {
				return zero, err
			}
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !shouldRetry(err) {
			break
		}
	}
	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NewCircuitBreaker creates a circuit breaker with sensible defaults.
// Only server-side and transport failures count against it.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // half-open: allow 3 requests
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     10 * time.Second, // open -> half-open after 10s
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *domain.APIError
			return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
		},
	})
}

// Bulkhead limits concurrent access to a resource.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead with the given max concurrency.
// Values below one use DefaultMaxConcurrency.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency < 1 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency)}
}

// Acquire blocks until a slot is available or context is cancelled.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (b *Bulkhead) Release() {
	<-b.sem
}
