package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven/mocks"
)

func TestAuthServiceCachesProbeResult(t *testing.T) {
	probe := mocks.NewMockAuthProbe()
	probe.SetAuthenticated(42, "hyeonwoo")
	a := NewAuthService(probe, time.Minute, nil)

	for i := 0; i < 5; i++ {
		status := a.Status(context.Background())
		assert.True(t, status.IsAuthenticated)
		assert.Equal(t, int64(42), status.UserID)
	}
	assert.Equal(t, 1, probe.Calls(), "cached status must not re-probe")
	assert.Equal(t, int64(42), a.ViewerID(context.Background()))
}

func TestAuthServiceExpiryReprobes(t *testing.T) {
	probe := mocks.NewMockAuthProbe()
	a := NewAuthService(probe, time.Minute, nil)

	now := time.Now()
	a.now = func() time.Time { return now }

	a.Status(context.Background())
	now = now.Add(2 * time.Minute)
	a.Status(context.Background())

	assert.Equal(t, 2, probe.Calls())
}

func TestAuthServiceInvalidateForcesReprobe(t *testing.T) {
	probe := mocks.NewMockAuthProbe()
	a := NewAuthService(probe, time.Minute, nil)

	a.Status(context.Background())
	probe.SetAuthenticated(7, "minji")
	a.Invalidate()

	status := a.Status(context.Background())
	assert.True(t, status.IsAuthenticated)
	assert.Equal(t, 2, probe.Calls())
}

func TestAuthServiceProbeFailureDegradesToAnonymous(t *testing.T) {
	probe := mocks.NewMockAuthProbe()
	probe.Err = domain.ErrUnreachable
	a := NewAuthService(probe, time.Minute, nil)

	status := a.Status(context.Background())
	assert.False(t, status.IsAuthenticated)
	assert.Zero(t, a.ViewerID(context.Background()))
}
