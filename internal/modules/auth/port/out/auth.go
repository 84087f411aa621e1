package out

import (
	"context"
	"time"

	"lectern/internal/modules/auth/domain"
)

type Gateway interface {
	Login(ctx context.Context, credentials domain.Credentials) (domain.Grant, error)
	Register(ctx context.Context, registration domain.Registration) (domain.User, error)
	CurrentUser(ctx context.Context) (domain.User, error)
}

type TokenStore interface {
	Save(ctx context.Context, token domain.Token) error
	Load(ctx context.Context) (domain.Token, error)
	Clear(ctx context.Context) error
}

// ExpiryReader extracts the expiry embedded in an access token, if any.
type ExpiryReader interface {
	Expiry(accessToken string) (time.Time, bool)
}
