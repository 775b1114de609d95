package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest HMAC key accepted, in bytes.
const MinKeyLength = 32

var (
	ErrKeyTooShort     = fmt.Errorf("jwtx: signing key must be at least %d bytes", MinKeyLength)
	ErrMissingIssuer   = errors.New("jwtx: issuer is required")
	ErrMissingAudience = errors.New("jwtx: audience is required")
)

// IssuerOptions configures an HS256 Issuer.
type IssuerOptions struct {
	Key       []byte
	Issuer    string
	Audience  string
	AccessTTL time.Duration // defaults to DefaultAccessTokenTTL

	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// Issuer signs access tokens with HMAC-SHA256. It is safe for concurrent use.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewIssuer(opts IssuerOptions) (*Issuer, error) {
	if len(opts.Key) < MinKeyLength {
		return nil, ErrKeyTooShort
	}
	if strings.TrimSpace(opts.Issuer) == "" {
		return nil, ErrMissingIssuer
	}
	if strings.TrimSpace(opts.Audience) == "" {
		return nil, ErrMissingAudience
	}

	ttl := opts.AccessTTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	key := make([]byte, len(opts.Key))
	copy(key, opts.Key)

	return &Issuer{
		key:      key,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		ttl:      ttl,
		now:      now,
	}, nil
}

// Issue stamps iss, aud, iat, nbf and exp onto c and signs it. Subject and
// ID are kept when set; a missing ID gets a fresh one.
func (i *Issuer) Issue(c Claims) (string, error) {
	now := i.now().UTC()

	c.Issuer = i.issuer
	c.Audience = jwt.ClaimStrings{i.audience}
	c.IssuedAt = jwt.NewNumericDate(now)
	c.NotBefore = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	if c.ID == "" {
		c.ID = NewJTI()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// TTL is the lifetime given to every issued token.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// ExpirySeconds is TTL in whole seconds, as reported to clients.
func (i *Issuer) ExpirySeconds() int { return int(i.ttl / time.Second) }

// Verifier returns an HS256Verifier that accepts exactly what this Issuer
// produces.
func (i *Issuer) Verifier() *HS256Verifier {
	return NewHS256Verifier(i.key, VerifyOptions{
		Issuer:   i.issuer,
		Audience: []string{i.audience},
		Leeway:   DefaultLeeway,
		Now:      i.now,
	})
}
