package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestClaimsDeriver_Derive(t *testing.T) {
	t.Parallel()

	at := time.Unix(1735689600, 0)
	d := &ClaimsDeriver{
		Now:   func() time.Time { return at },
		NewID: func() string { return "fixed-id" },
	}

	set := d.Derive(testSeed[2])

	require.Equal(t, domain.ClaimSet{
		{Type: domain.ClaimName, Value: "manager"},
		{Type: domain.ClaimSubject, Value: "manager"},
		{Type: domain.ClaimPreferredUsername, Value: "manager"},
		{Type: domain.ClaimDisplayName, Value: "Manager"},
		{Type: domain.ClaimEmail, Value: "manager@example.com"},
		{Type: domain.ClaimIssuedAt, Value: "1735689600"},
		{Type: domain.ClaimAuthTime, Value: "1735689600"},
		{Type: domain.ClaimRole, Value: "Manager"},
		{Type: domain.ClaimRole, Value: "User"},
		{Type: domain.ClaimTokenID, Value: "fixed-id"},
	}, set)
}

func TestClaimsDeriver_NeverRepeats(t *testing.T) {
	t.Parallel()

	var d *ClaimsDeriver
	a := d.Derive(testSeed[0])
	b := d.Derive(testSeed[0])

	require.NotEqual(t, a, b)
	require.NotEqual(t, a.Get(domain.ClaimTokenID), b.Get(domain.ClaimTokenID))
	require.Equal(t, a.Roles(), b.Roles())
}

func TestCredentialValidator_Argon2(t *testing.T) {
	t.Parallel()

	var comparer cryptox.Argon2Comparer
	hashed, err := comparer.Prepare("user123")
	require.NoError(t, err)

	creds, err := memory.NewCredentialStore([]domain.Identity{
		{Username: "user", Secret: hashed, Roles: []string{"User"}},
	})
	require.NoError(t, err)

	v, err := NewCredentialValidator(creds, comparer, nil)
	require.NoError(t, err)
	ctx := context.Background()

	set, err := v.Validate(ctx, "User", "user123")
	require.NoError(t, err)
	require.Equal(t, "user", set.Subject())

	_, err = v.Validate(ctx, "user", hashed)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = v.Validate(ctx, "ghost", "user123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCredentialValidator_RequiresStore(t *testing.T) {
	t.Parallel()

	_, err := NewCredentialValidator(nil, nil, nil)
	require.Error(t, err)
}
