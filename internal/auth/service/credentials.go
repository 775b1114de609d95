package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// decoySecret is compared against on a directory miss. Its length matches no
// seeded secret, so the comparison always fails.
const decoySecret = "decoy-secret-never-matches-any-identity"

// CredentialValidator checks an identifier/secret pair against the
// credential store and derives claims on success.
type CredentialValidator struct {
	credentials store.Credentials
	comparer    cryptox.SecretComparer
	deriver     *ClaimsDeriver
	decoy       string
}

// NewCredentialValidator prepares the decoy with comparer so a miss costs
// roughly what a wrong secret does. A nil comparer means PlainComparer.
func NewCredentialValidator(creds store.Credentials, comparer cryptox.SecretComparer, deriver *ClaimsDeriver) (*CredentialValidator, error) {
	if creds == nil {
		return nil, errors.New("service: credential store is required")
	}
	if comparer == nil {
		comparer = cryptox.PlainComparer{}
	}
	decoy, err := comparer.Prepare(decoySecret)
	if err != nil {
		return nil, fmt.Errorf("service: prepare decoy: %w", err)
	}
	return &CredentialValidator{
		credentials: creds,
		comparer:    comparer,
		deriver:     deriver,
		decoy:       decoy,
	}, nil
}

// Validate returns ErrInvalidCredentials for a blank field, an unknown
// identifier and a wrong secret alike. Other errors come from the store.
func (v *CredentialValidator) Validate(ctx context.Context, identifier, secret string) (domain.ClaimSet, error) {
	l := slogx.FromContext(ctx)

	username := domain.NormalizeUsername(identifier)
	if username == "" || strings.TrimSpace(secret) == "" {
		return nil, ErrInvalidCredentials
	}

	id, err := v.credentials.Lookup(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("lookup identity: %w", err)
		}
		_ = v.comparer.Equal(secret, v.decoy)
		l.Info("credential check failed", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	if !v.comparer.Equal(secret, id.Secret) {
		l.Info("credential check failed", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	l.Info("credential check succeeded", slog.String("username", username))
	return v.deriver.Derive(id), nil
}
