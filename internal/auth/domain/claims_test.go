package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestClaimSet(t *testing.T) {
	set := domain.ClaimSet{}.
		Add(domain.ClaimSubject, "admin").
		Add(domain.ClaimDisplayName, "Administrator").
		Add(domain.ClaimEmail, "admin@example.com").
		Add(domain.ClaimRole, "Admin").
		Add(domain.ClaimRole, "User")

	t.Run("multiple values share a type", func(t *testing.T) {
		require.Equal(t, []string{"Admin", "User"}, set.Roles())
	})

	t.Run("first value", func(t *testing.T) {
		v, ok := set.First(domain.ClaimSubject)
		require.True(t, ok)
		require.Equal(t, "admin", v)

		_, ok = set.First("missing")
		require.False(t, ok)
	})

	t.Run("has role is exact", func(t *testing.T) {
		require.True(t, domain.HasRole(set, "Admin"))
		require.False(t, domain.HasRole(set, "admin"))
		require.False(t, domain.HasRole(set, "Manager"))
		require.False(t, domain.HasRole(nil, "Admin"))
	})

	t.Run("user info projection", func(t *testing.T) {
		info := set.UserInfo()
		require.Equal(t, "admin", info.Username)
		require.Equal(t, "Administrator", info.DisplayName)
		require.Equal(t, "admin@example.com", info.Email)
		require.Equal(t, []string{"Admin", "User"}, info.Roles)
	})

	t.Run("empty set projects empty roles", func(t *testing.T) {
		require.NotNil(t, domain.ClaimSet{}.UserInfo().Roles)
	})
}

func TestIdentity(t *testing.T) {
	require.Equal(t, "admin", domain.NormalizeUsername("  ADMIN "))

	withEmail := domain.Identity{Username: "user", Email: "u@corp.test"}
	require.Equal(t, "u@corp.test", withEmail.EmailOrDefault())

	without := domain.Identity{Username: "manager"}
	require.Equal(t, "manager@example.com", without.EmailOrDefault())
}

func TestRefreshTokenExpired(t *testing.T) {
	now := time.Now()
	rt := domain.RefreshToken{ExpiresAt: now.Add(time.Minute)}
	require.False(t, rt.Expired(now))
	require.True(t, rt.Expired(now.Add(time.Minute)))
	require.True(t, rt.Expired(now.Add(2*time.Minute)))
}
