package httpapi

import (
	"context"
	"net/http"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Ensure Client implements AuthProbe
var _ driven.AuthProbe = (*Client)(nil)

// Check probes the backend for the session's authentication state.
func (c *Client) Check(ctx context.Context) (*domain.AuthStatus, error) {
	var status domain.AuthStatus
	if err := c.do(ctx, http.MethodGet, "/api/auth/check/", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
