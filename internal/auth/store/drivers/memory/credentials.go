// Package memory provides process-local implementations of the store
// contracts. It is the default backing for both the identity directory and
// refresh tokens.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

// CredentialStore is a read-only identity directory built once from a seed
// table. Lookups never mutate it, so no locking is needed.
type CredentialStore struct {
	byUsername map[string]domain.Identity
	ordered    []string
}

// NewCredentialStore loads identities, normalizing each username. Two seeds
// that normalize to the same username, or a blank username, are rejected.
func NewCredentialStore(seed []domain.Identity) (*CredentialStore, error) {
	s := &CredentialStore{
		byUsername: make(map[string]domain.Identity, len(seed)),
		ordered:    make([]string, 0, len(seed)),
	}

	for _, id := range seed {
		username := domain.NormalizeUsername(id.Username)
		if username == "" {
			return nil, fmt.Errorf("load identity: %w: blank username", store.ErrInvalidArgument)
		}
		if _, dup := s.byUsername[username]; dup {
			return nil, fmt.Errorf("load identity %q: %w", username, store.ErrAlreadyExists)
		}

		id.Username = username
		id.Roles = slices.Clone(id.Roles)
		s.byUsername[username] = id
		s.ordered = append(s.ordered, username)
	}

	slices.Sort(s.ordered)
	return s, nil
}

func (s *CredentialStore) Lookup(_ context.Context, username string) (domain.Identity, error) {
	id, ok := s.byUsername[domain.NormalizeUsername(username)]
	if !ok {
		return domain.Identity{}, store.ErrNotFound
	}
	id.Roles = slices.Clone(id.Roles)
	return id, nil
}

func (s *CredentialStore) List(_ context.Context) ([]domain.Identity, error) {
	out := make([]domain.Identity, 0, len(s.ordered))
	for _, username := range s.ordered {
		id := s.byUsername[username]
		id.Roles = slices.Clone(id.Roles)
		out = append(out, id)
	}
	return out, nil
}

// Len reports the number of loaded identities.
func (s *CredentialStore) Len() int { return len(s.ordered) }

// String is used in startup logs.
func (s *CredentialStore) String() string {
	return "memory(" + strings.Join(s.ordered, ",") + ")"
}
