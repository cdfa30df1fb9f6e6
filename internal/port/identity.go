package port

import (
	"context"

	"reportsvc/internal/domain"
)

// IdentityProvider exchanges a bearer token for the calling user.
// An invalid or expired token maps to domain.ErrUnauthorized; provider
// outages surface as ordinary errors and become internal responses.
type IdentityProvider interface {
	GetUser(ctx context.Context, accessToken string) (*domain.User, error)
}
