package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo contains display fields decoded from a stored credential.
// The lending backend treats credentials as opaque; when one happens to be
// a JWT its claims are decoded here without verifying the signature.
type TokenInfo struct {
	Raw      string
	JWT      bool
	Subject  string
	IssuedAt time.Time
	Expiry   time.Time
}

// Inspect decodes the claims of a JWT credential. Non-JWT credentials give
// a TokenInfo with only Raw set.
func Inspect(raw string) TokenInfo {
	info := TokenInfo{Raw: strings.TrimSpace(raw)}
	if info.Raw == "" {
		return info
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(info.Raw, claims); err != nil {
		return info
	}
	info.JWT = true
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.Expiry = exp.Time
	}
	return info
}

// IsExpired reports whether the token's expiry time has passed.
// A zero expiry (opaque token or no exp claim) is treated as not expired.
func (t TokenInfo) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}
