package driven

import (
	"context"

	"github.com/malcha/dagu-client/internal/core/domain"
)

// AuthProbe checks authentication state server-side. The session cookie is
// HttpOnly, so probing is the only way the client learns who it is.
type AuthProbe interface {
	Check(ctx context.Context) (*domain.AuthStatus, error)
}
