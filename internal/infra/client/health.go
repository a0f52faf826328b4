package client

import (
	"context"
	"net/http"

	"github.com/quarkfin/platform-go/internal/domain"
)

// HealthCheck pings the backend.
func (c *Client) HealthCheck(ctx context.Context) (*domain.Ping, error) {
	return invoke[*domain.Ping](ctx, c, request{op: "HealthCheck", method: http.MethodGet, path: "/ping"})
}
