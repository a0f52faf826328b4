package domain

import (
	"context"
	"time"
)

// ============================================================
// Health
// ============================================================

// Ping is the backend's GET /ping body.
type Ping struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// HealthStatus is returned by the portal's GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	Error       string `json:"error,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// Download is an opaque binary export with the metadata needed to save it.
type Download struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Dashboard is the composed payload behind the platform landing screen.
type Dashboard struct {
	Insights    *BusinessRiskInsights    `json:"insights"`
	Assessments []BusinessRiskAssessment `json:"assessments"`
	Credits     *UserCredits             `json:"credits"`
}

// PollOptions bounds a status poll. Zero values take the client defaults.
type PollOptions struct {
	MaxAttempts int
	Interval    time.Duration

	// Wait blocks between attempts. Defaults to a timer that honours ctx.
	Wait func(ctx context.Context, d time.Duration) error
}
