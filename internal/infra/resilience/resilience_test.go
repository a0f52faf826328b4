package resilience_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/resilience"
)

// recordingWait captures requested delays without sleeping.
type recordingWait struct {
	delays []time.Duration
}

func (r *recordingWait) wait(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func testPolicy(w *recordingWait) resilience.Policy {
	return resilience.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Wait:        w.wait,
	}
}

func TestRetry_Success(t *testing.T) {
	w := &recordingWait{}
	callCount := 0
	v, err := resilience.Retry(context.Background(), testPolicy(w), func(context.Context, int) (string, error) {
		callCount++
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v != "ok" {
		t.Errorf("expected 'ok', got %q", v)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if len(w.delays) != 0 {
		t.Errorf("expected no waits, got %v", w.delays)
	}
}

func TestRetry_RetriesServerErrors(t *testing.T) {
	w := &recordingWait{}
	callCount := 0
	_, err := resilience.Retry(context.Background(), testPolicy(w), func(context.Context, int) (int, error) {
		callCount++
		if callCount < 3 {
			return 0, &domain.APIError{Code: "HTTP_503", Status: http.StatusServiceUnavailable}
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestRetry_ExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	w := &recordingWait{}
	callCount := 0
	_, err := resilience.Retry(context.Background(), testPolicy(w), func(_ context.Context, attempt int) (int, error) {
		callCount++
		return 0, &domain.APIError{Code: domain.CodeNetwork, Message: "attempt", Status: attempt}
	})

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
	if apiErr.Status != 3 {
		t.Errorf("expected the last attempt's error, got status %d", apiErr.Status)
	}
}

func TestRetry_BackoffIsLinear(t *testing.T) {
	w := &recordingWait{}
	_, _ = resilience.Retry(context.Background(), testPolicy(w), func(context.Context, int) (int, error) {
		return 0, &domain.APIError{Code: domain.CodeNetwork}
	})

	want := []time.Duration{time.Second, 2 * time.Second}
	if len(w.delays) != len(want) {
		t.Fatalf("expected %d waits, got %v", len(want), w.delays)
	}
	for i := range want {
		if w.delays[i] != want[i] {
			t.Errorf("wait %d: expected %v, got %v", i, want[i], w.delays[i])
		}
	}
}

func TestRetry_DoesNotRetryFinalErrors(t *testing.T) {
	cases := map[string]*domain.APIError{
		"400":     {Code: "HTTP_400", Status: http.StatusBadRequest},
		"401":     {Code: "HTTP_401", Status: http.StatusUnauthorized},
		"403":     {Code: "HTTP_403", Status: http.StatusForbidden},
		"404":     {Code: "NOT_FOUND", Status: http.StatusNotFound},
		"timeout": {Code: domain.CodeTimeout},
		"oversized body": {Code: domain.CodeUnknown, Status: http.StatusOK},
	}

	for name, apiErr := range cases {
		t.Run(name, func(t *testing.T) {
			w := &recordingWait{}
			callCount := 0
			_, err := resilience.Retry(context.Background(), testPolicy(w), func(context.Context, int) (int, error) {
				callCount++
				return 0, apiErr
			})
			if err != apiErr {
				t.Fatalf("expected the original error back, got %v", err)
			}
			if callCount != 1 {
				t.Errorf("expected 1 call, got %d", callCount)
			}
		})
	}
}

func TestRetry_RetriesOtherClientErrors(t *testing.T) {
	w := &recordingWait{}
	callCount := 0
	_, _ = resilience.Retry(context.Background(), testPolicy(w), func(context.Context, int) (int, error) {
		callCount++
		return 0, &domain.APIError{Code: "HTTP_429", Status: http.StatusTooManyRequests}
	})
	if callCount != 3 {
		t.Errorf("expected 3 calls for 429, got %d", callCount)
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := resilience.Retry(ctx, resilience.Policy{MaxAttempts: 5, BaseDelay: time.Second}, func(context.Context, int) (int, error) {
		return 0, errors.New("error")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestRetry_RealWaitIsInterruptible(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := resilience.Retry(ctx, resilience.Policy{MaxAttempts: 3, BaseDelay: time.Minute}, func(context.Context, int) (int, error) {
		return 0, &domain.APIError{Code: domain.CodeNetwork}
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("wait was not interrupted by context")
	}
}

func TestDelay(t *testing.T) {
	base := time.Second
	if d := resilience.Delay(1, base); d != 0 {
		t.Errorf("attempt 1: expected 0, got %v", d)
	}
	prev := time.Duration(0)
	for n := 2; n <= 5; n++ {
		d := resilience.Delay(n, base)
		if d <= prev {
			t.Errorf("attempt %d: delay %v not greater than %v", n, d, prev)
		}
		prev = d
	}
}

func TestNewPolicy_Defaults(t *testing.T) {
	p := resilience.NewPolicy(resilience.Config{})
	if p.MaxAttempts != resilience.DefaultMaxAttempts {
		t.Errorf("expected %d attempts, got %d", resilience.DefaultMaxAttempts, p.MaxAttempts)
	}
	if p.BaseDelay != resilience.DefaultBaseDelay {
		t.Errorf("expected %v base delay, got %v", resilience.DefaultBaseDelay, p.BaseDelay)
	}
}

func TestBulkhead_AcquireRelease(t *testing.T) {
	bh := resilience.NewBulkhead(2)

	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected acquire, got %v", err)
	}
	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected acquire, got %v", err)
	}

	// Third acquire should block, so use a short deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := bh.Acquire(ctx); err == nil {
		t.Fatal("expected timeout on third acquire")
	}

	bh.Release()

	if err := bh.Acquire(context.Background()); err != nil {
		t.Fatalf("expected acquire after release, got %v", err)
	}
}

func TestBulkhead_NonPositiveSizeStillAdmits(t *testing.T) {
	for _, n := range []int{0, -3} {
		bh := resilience.NewBulkhead(n)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		err := bh.Acquire(ctx)
		cancel()
		if err != nil {
			t.Fatalf("NewBulkhead(%d): expected acquire, got %v", n, err)
		}
		bh.Release()
	}
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")
	for i := 0; i < 10; i++ {
		_, _ = cb.Execute(func() (any, error) {
			return nil, &domain.APIError{Code: "HTTP_404", Status: http.StatusNotFound}
		})
	}
	if cb.State().String() != "closed" {
		t.Errorf("expected breaker to stay closed on 4xx, got %s", cb.State())
	}
}
