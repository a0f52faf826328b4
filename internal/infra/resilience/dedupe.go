package resilience

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Deduplicator collapses concurrent calls that share a key into one execution.
// A key lives only while its call is in flight; the next call after it settles
// starts a fresh execution.
type Deduplicator struct {
	group singleflight.Group
	live  atomic.Int64
}

// NewDeduplicator creates an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// InFlight returns the number of keys currently executing.
func (d *Deduplicator) InFlight() int {
	return int(d.live.Load())
}

// Dedupe runs fn under key, or joins the execution already running under it.
// Every joined caller observes the same value or the same error. shared is
// true when the result was delivered to more than one caller.
//
// fn runs on a context detached from the first caller's cancellation so one
// caller walking away does not fail the others; each caller still returns
// early when its own ctx is done.
func Dedupe[T any](ctx context.Context, d *Deduplicator, key string, fn func(ctx context.Context) (T, error)) (v T, shared bool, err error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := d.group.DoChan(key, func() (any, error) {
		d.live.Add(1)
		defer d.live.Add(-1)
		return fn(flightCtx)
	})

	select {
	case <-ctx.Done():
		return v, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return v, res.Shared, res.Err
		}
		if res.Val != nil {
			v, _ = res.Val.(T)
		}
		return v, res.Shared, nil
	}
}

// CallerKey scopes key to the bearer token the call will carry, so two users
// submitting the same payload never share one backend request. The token is
// hashed to keep credentials out of the key. An empty token leaves key as is.
func CallerKey(token, key string) string {
	if token == "" {
		return key
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:12]) + ":" + key
}

// AssessmentKey identifies a generic assessment creation.
func AssessmentKey(website, countryCode string) string {
	return fmt.Sprintf("assessment-%s-%s", website, countryCode)
}

// BusinessRiskKey identifies a business risk assessment creation.
func BusinessRiskKey(domain, assessmentType string) string {
	return fmt.Sprintf("business-risk-%s-%s", domain, assessmentType)
}

// RerunKey identifies a rerun of an existing business risk assessment.
func RerunKey(id string) string {
	return "business-risk-rerun-" + id
}

// WebsiteRiskKey identifies a website risk intake submission.
func WebsiteRiskKey(website, recordID string) string {
	return fmt.Sprintf("website-risk-%s-%s", website, recordID)
}

// PhoneVerificationKey identifies an OTP send for a phone number.
func PhoneVerificationKey(phone string) string {
	return "phone-verification-" + phone
}
