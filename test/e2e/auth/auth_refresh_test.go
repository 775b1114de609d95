//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func testRefreshRotation(t *testing.T, client *authsdk.SDKClient) {
	first, err := client.Login(t.Context(), adminUsername, adminPassword)
	require.NoError(t, err)

	second, err := client.Refresh(t.Context(), first.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, second)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// the consumed token is gone
	_, err = client.Refresh(t.Context(), first.RefreshToken)
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	require.NoError(t, client.Logout(t.Context(), second.RefreshToken))
	_, err = client.Refresh(t.Context(), second.RefreshToken)
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	// logout of an unknown token still succeeds
	require.NoError(t, client.Logout(t.Context(), "never-issued"))
}

func TestRefresh_RotationMemory(t *testing.T) {
	testRefreshRotation(t, setupAuthContainer(t))
}

func TestRefresh_RotationSQLite(t *testing.T) {
	testRefreshRotation(t, setupAuthContainerWithEnv(t, map[string]string{
		"AUTH_REFRESH_STORE": "sqlite",
		"AUTH_DATABASE_FILE": "/data/auth.db",
	}))
}

func TestRefresh_Blank(t *testing.T) {
	client := setupAuthContainer(t)

	_, err := client.Refresh(t.Context(), "")
	assertAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
}

func TestLogoutAll(t *testing.T) {
	client := setupAuthContainer(t)

	laptop, err := client.Login(t.Context(), userUsername, userPassword)
	require.NoError(t, err)
	phone := login(t, client, userUsername, userPassword)

	revoked, err := phone.LogoutAll(t.Context())
	require.NoError(t, err)
	require.Equal(t, 2, revoked)

	_, err = client.Refresh(t.Context(), laptop.RefreshToken)
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
}
