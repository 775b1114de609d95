package domain

import "time"

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "Bearer"

// TokenPair is the result of a successful login or refresh: a short-lived
// signed access token and an opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    time.Duration
	User         *UserInfo // only populated on login
}

// RefreshToken models a stored refresh token record. The token itself is an
// opaque capability; it carries no embedded data.
type RefreshToken struct {
	Token     string
	Owner     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
