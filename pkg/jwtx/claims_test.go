package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "auth-service",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("auth-service"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("chat-service"), jwtx.ErrIssuer)
	})
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: []string{"api", "reports"},
		},
	}

	t.Run("contains match", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience([]string{"api"}))
	})

	t.Run("multiple match", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience([]string{"foo", "reports"}))
	})

	t.Run("no match", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateAudience([]string{"admin"}), jwtx.ErrAudience)
	})

	t.Run("empty expected list", func(t *testing.T) {
		require.NoError(t, c.ValidateAudience(nil))
	})
}

func TestValidateExpiryWithLeeway(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	leeway := 60 * time.Second

	withExp := func(exp time.Time) *jwtx.Claims {
		return &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}}
	}

	t.Run("valid token", func(t *testing.T) {
		require.NoError(t, withExp(now.Add(time.Minute)).ValidateExpiryWithLeeway(now, leeway))
	})

	t.Run("expired but inside leeway", func(t *testing.T) {
		require.NoError(t, withExp(now.Add(-59*time.Second)).ValidateExpiryWithLeeway(now, leeway))
	})

	t.Run("expired beyond leeway", func(t *testing.T) {
		require.ErrorIs(t, withExp(now.Add(-61*time.Second)).ValidateExpiryWithLeeway(now, leeway), jwtx.ErrExpired)
	})

	t.Run("not yet valid beyond leeway", func(t *testing.T) {
		c := withExp(now.Add(time.Hour))
		c.NotBefore = jwt.NewNumericDate(now.Add(2 * time.Minute))
		require.ErrorIs(t, c.ValidateExpiryWithLeeway(now, leeway), jwtx.ErrNotYetValid)
	})

	t.Run("missing exp", func(t *testing.T) {
		require.ErrorIs(t, (&jwtx.Claims{}).ValidateExpiryWithLeeway(now, leeway), jwtx.ErrInvalidClaim)
	})
}
