// Package services holds the small domain services around the search
// surface: authentication state, catalog suggestions and popular terms.
package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// AuthService caches the session's authentication status so that item
// normalization and ownership checks do not probe the backend per render.
type AuthService struct {
	probe  driven.AuthProbe
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	status    *domain.AuthStatus
	checkedAt time.Time
	now       func() time.Time
}

// NewAuthService creates an auth service. A non-positive ttl defaults to
// five minutes.
func NewAuthService(probe driven.AuthProbe, ttl time.Duration, logger *slog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		probe:  probe,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Status returns the cached authentication status, probing the backend
// when the cache is cold or expired. A failed probe degrades to
// anonymous rather than failing the caller.
func (a *AuthService) Status(ctx context.Context) domain.AuthStatus {
	a.mu.Lock()
	if a.status != nil && a.now().Sub(a.checkedAt) < a.ttl {
		status := *a.status
		a.mu.Unlock()
		return status
	}
	a.mu.Unlock()

	status, err := a.probe.Check(ctx)
	if err != nil {
		a.logger.Warn("auth probe failed, treating session as anonymous", "error", err)
		return domain.AuthStatus{}
	}

	a.mu.Lock()
	a.status = status
	a.checkedAt = a.now()
	a.mu.Unlock()
	return *status
}

// ViewerID returns the authenticated user's ID, or zero for anonymous.
func (a *AuthService) ViewerID(ctx context.Context) int64 {
	status := a.Status(ctx)
	if !status.IsAuthenticated {
		return 0
	}
	return status.UserID
}

// Invalidate drops the cached status. Call after login or logout.
func (a *AuthService) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = nil
	a.checkedAt = time.Time{}
}
