package domain

import "slices"

// Claim types used in derived claim sets. These double as the JSON field
// names inside the access token payload.
const (
	ClaimName              = "name"
	ClaimSubject           = "sub"
	ClaimPreferredUsername = "preferred_username"
	ClaimDisplayName       = "display_name"
	ClaimEmail             = "email"
	ClaimIssuedAt          = "iat"
	ClaimAuthTime          = "auth_time"
	ClaimRole              = "role"
	ClaimTokenID           = "jti"
)

// Claim is a single typed assertion about an identity.
type Claim struct {
	Type  string
	Value string
}

// ClaimSet is an unordered multiset of claims. Several claims may share a
// type (one "role" claim per role).
type ClaimSet []Claim

// Add appends a claim and returns the extended set.
func (s ClaimSet) Add(typ, value string) ClaimSet {
	return append(s, Claim{Type: typ, Value: value})
}

// Values returns every value recorded for typ, in insertion order.
func (s ClaimSet) Values(typ string) []string {
	var out []string
	for _, c := range s {
		if c.Type == typ {
			out = append(out, c.Value)
		}
	}
	return out
}

// First returns the first value recorded for typ.
func (s ClaimSet) First(typ string) (string, bool) {
	for _, c := range s {
		if c.Type == typ {
			return c.Value, true
		}
	}
	return "", false
}

// Get is First without the presence flag.
func (s ClaimSet) Get(typ string) string {
	v, _ := s.First(typ)
	return v
}

// Subject is the identifier the set was derived for.
func (s ClaimSet) Subject() string { return s.Get(ClaimSubject) }

// Roles returns the role claims in insertion order.
func (s ClaimSet) Roles() []string { return s.Values(ClaimRole) }

// HasRole reports whether the set carries a role claim equal to name.
// Role names are compared exactly.
func HasRole(s ClaimSet, name string) bool {
	return slices.Contains(s.Roles(), name)
}

// HasRole is the method form of HasRole.
func (s ClaimSet) HasRole(name string) bool { return HasRole(s, name) }

// UserInfo projects the identity claims of the set.
func (s ClaimSet) UserInfo() UserInfo {
	roles := s.Roles()
	if roles == nil {
		roles = []string{}
	}
	return UserInfo{
		Username:    s.Get(ClaimSubject),
		DisplayName: s.Get(ClaimDisplayName),
		Email:       s.Get(ClaimEmail),
		Roles:       roles,
	}
}
