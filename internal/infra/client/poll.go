package client

import (
	"context"
	"fmt"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"

	"go.uber.org/zap"
)

// Polling defaults: two minutes of status checks.
const (
	DefaultPollAttempts = 60
	DefaultPollInterval = 2 * time.Second
)

// PollOptions bounds a status poll.
type PollOptions = domain.PollOptions

func withDefaults(o PollOptions) PollOptions {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = DefaultPollAttempts
	}
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.Wait == nil {
		o.Wait = waitFor
	}
	return o
}

// poll fetches a snapshot up to MaxAttempts times, one fetch per attempt,
// until done reports a terminal snapshot. A failed fetch uses up its attempt.
func poll[T any](
	ctx context.Context,
	c *Client,
	opts PollOptions,
	fetch func(ctx context.Context) (T, error),
	done func(T) bool,
	onUpdate func(T),
) (T, error) {
	var zero T
	opts = withDefaults(opts)

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, Normalize(err)
		}

		snap, err := fetch(ctx)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, Normalize(ctxErr)
			}
			c.metrics.IncrPollAttempt("error")
			c.logger.Warn("status poll attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", opts.MaxAttempts),
				zap.Error(err),
			)
		case done(snap):
			c.metrics.IncrPollAttempt("terminal")
			if onUpdate != nil {
				onUpdate(snap)
			}
			return snap, nil
		default:
			c.metrics.IncrPollAttempt("pending")
			if onUpdate != nil {
				onUpdate(snap)
			}
		}

		if attempt < opts.MaxAttempts {
			if err := opts.Wait(ctx, opts.Interval); err != nil {
				return zero, Normalize(err)
			}
		}
	}

	return zero, &domain.APIError{
		Message: fmt.Sprintf("Assessment polling timed out after %d attempts", opts.MaxAttempts),
		Code:    domain.CodeTimeout,
	}
}

func waitFor(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
