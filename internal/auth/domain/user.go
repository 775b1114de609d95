package domain

import "strings"

// Identity is a directory entry loaded at startup. It is never mutated after
// load; the credential store hands out copies.
type Identity struct {
	Username    string   // normalized to lowercase
	Secret      string   // opaque; plain text or an encoded hash depending on the comparer
	DisplayName string
	Email       string   // optional
	Roles       []string // ordered
}

// NormalizeUsername lowercases and trims an identifier so lookups are
// case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// EmailOrDefault returns the stored email, or a placeholder derived from the
// username when none was configured.
func (i Identity) EmailOrDefault() string {
	if i.Email != "" {
		return i.Email
	}
	return i.Username + "@example.com"
}

// UserInfo is the public projection of an identity returned to callers.
type UserInfo struct {
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}
