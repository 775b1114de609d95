package service

import (
	"strconv"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsDeriver builds the claim set for an identity. Every call stamps the
// current time and a fresh token id, so two derivations never match.
type ClaimsDeriver struct {
	Now   func() time.Time
	NewID func() string
}

func (d *ClaimsDeriver) now() time.Time {
	if d == nil || d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *ClaimsDeriver) newID() string {
	if d == nil || d.NewID == nil {
		return jwtx.NewJTI()
	}
	return d.NewID()
}

func (d *ClaimsDeriver) Derive(id domain.Identity) domain.ClaimSet {
	ts := strconv.FormatInt(d.now().Unix(), 10)

	set := make(domain.ClaimSet, 0, 8+len(id.Roles))
	set = set.
		Add(domain.ClaimName, id.Username).
		Add(domain.ClaimSubject, id.Username).
		Add(domain.ClaimPreferredUsername, id.Username).
		Add(domain.ClaimDisplayName, id.DisplayName).
		Add(domain.ClaimEmail, id.EmailOrDefault()).
		Add(domain.ClaimIssuedAt, ts).
		Add(domain.ClaimAuthTime, ts)
	for _, role := range id.Roles {
		set = set.Add(domain.ClaimRole, role)
	}
	return set.Add(domain.ClaimTokenID, d.newID())
}

// toJWT maps a claim set onto the token payload. iat is restamped by the
// issuer at signing time.
func toJWT(set domain.ClaimSet) jwtx.Claims {
	c := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: set.Subject(),
			ID:      set.Get(domain.ClaimTokenID),
		},
		Name:              set.Get(domain.ClaimName),
		PreferredUsername: set.Get(domain.ClaimPreferredUsername),
		DisplayName:       set.Get(domain.ClaimDisplayName),
		Email:             set.Get(domain.ClaimEmail),
		Roles:             jwt.ClaimStrings(set.Roles()),
	}
	if v, err := strconv.ParseInt(set.Get(domain.ClaimAuthTime), 10, 64); err == nil {
		c.AuthTime = v
	}
	return c
}

// fromJWT rebuilds the claim set carried by a verified token.
func fromJWT(c jwtx.Claims) domain.ClaimSet {
	set := make(domain.ClaimSet, 0, 8+len(c.Roles))
	set = set.
		Add(domain.ClaimName, c.Name).
		Add(domain.ClaimSubject, c.Subject).
		Add(domain.ClaimPreferredUsername, c.PreferredUsername).
		Add(domain.ClaimDisplayName, c.DisplayName).
		Add(domain.ClaimEmail, c.Email)
	if c.IssuedAt != nil {
		set = set.Add(domain.ClaimIssuedAt, strconv.FormatInt(c.IssuedAt.Unix(), 10))
	}
	if c.AuthTime != 0 {
		set = set.Add(domain.ClaimAuthTime, strconv.FormatInt(c.AuthTime, 10))
	}
	for _, role := range c.Roles {
		set = set.Add(domain.ClaimRole, role)
	}
	if c.ID != "" {
		set = set.Add(domain.ClaimTokenID, c.ID)
	}
	return set
}
