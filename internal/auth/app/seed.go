package app

import (
	"fmt"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
)

// SeedIdentities is the static directory loaded at startup. Each call
// returns a fresh copy.
func SeedIdentities() []domain.Identity {
	return []domain.Identity{
		{Username: "admin", Secret: "admin123", DisplayName: "Administrator", Email: "admin@example.com", Roles: []string{"Admin", "User"}},
		{Username: "user", Secret: "user123", DisplayName: "Regular User", Email: "user@example.com", Roles: []string{"User"}},
		{Username: "manager", Secret: "manager123", DisplayName: "Manager", Roles: []string{"Manager", "User"}},
	}
}

func comparerFor(mode string) cryptox.SecretComparer {
	if mode == SecretHashingArgon2 {
		return cryptox.Argon2Comparer{}
	}
	return cryptox.PlainComparer{}
}

// loadCredentials prepares every seed secret with comparer before loading,
// so argon2 mode never keeps a plaintext secret in memory.
func loadCredentials(seed []domain.Identity, comparer cryptox.SecretComparer) (*memory.CredentialStore, error) {
	for i := range seed {
		prepared, err := comparer.Prepare(seed[i].Secret)
		if err != nil {
			return nil, fmt.Errorf("prepare secret for %q: %w", seed[i].Username, err)
		}
		seed[i].Secret = prepared
	}
	return memory.NewCredentialStore(seed)
}
