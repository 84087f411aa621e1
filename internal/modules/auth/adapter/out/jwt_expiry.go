package out

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	authout "lectern/internal/modules/auth/port/out"
)

// JWTExpiryReader reads the exp claim without verifying the signature; the
// backend remains the authority on whether the token is accepted.
type JWTExpiryReader struct {
	parser *jwt.Parser
}

func NewJWTExpiryReader() authout.ExpiryReader {
	return &JWTExpiryReader{parser: jwt.NewParser()}
}

func (r *JWTExpiryReader) Expiry(accessToken string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := r.parser.ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time.UTC(), true
}
