package auth

import (
	"time"

	"github.com/google/uuid"
)

// NewActivationToken returns a fresh one-time token value and its expiry.
func NewActivationToken(ttl time.Duration) (token string, expiresAt time.Time) {
	return uuid.New().String(), time.Now().Add(ttl)
}

// TokenExpired reports whether the token expiry has passed.
func TokenExpired(expiresAt time.Time) bool {
	return time.Now().After(expiresAt)
}
