package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants. These provide sensible security defaults but
// can be overridden per deployment.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultLeeway is the clock skew tolerated when checking exp and nbf.
	DefaultLeeway = 60 * time.Second
)

// Claims are the access-token claims. The registered claims carry iss, sub,
// aud, iat, nbf, exp and jti; the rest describe the authenticated principal.
type Claims struct {
	jwt.RegisteredClaims

	// Name is the login identifier, duplicated for consumers that expect it.
	Name string `json:"name,omitempty"`

	PreferredUsername string `json:"preferred_username,omitempty"`
	DisplayName       string `json:"display_name,omitempty"`
	Email             string `json:"email,omitempty"`

	// AuthTime is when the user presented credentials, in Unix seconds.
	// It survives refreshes unchanged only if the caller carries it over.
	AuthTime int64 `json:"auth_time,omitempty"`

	// Roles accepts either a single string or an array on decode.
	Roles jwt.ClaimStrings `json:"role,omitempty"`
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiryWithLeeway checks exp and nbf at now, allowing leeway of
// clock skew either side. A token without exp is rejected.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}

	if now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
