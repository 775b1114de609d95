//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	client := setupAuthContainer(t)

	resp, err := client.Login(t.Context(), adminUsername, adminPassword)
	require.NoError(t, err)
	assertTokenResponse(t, resp)
	require.Equal(t, 900, resp.ExpiresIn)
	require.NotNil(t, resp.User)
	require.Equal(t, "Administrator", resp.User.DisplayName)
	require.ElementsMatch(t, []string{"Admin", "User"}, resp.User.Roles)
}

func TestLogin_Rejections(t *testing.T) {
	client := setupAuthContainer(t)

	tests := []struct {
		name     string
		username string
		password string
		status   int
		code     string
	}{
		{"wrong password", adminUsername, "nope", http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials},
		{"unknown user", "ghost", "whatever", http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials},
		{"blank password", adminUsername, "", http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
		{"blank username", "", adminPassword, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Login(t.Context(), tt.username, tt.password)
			assertAPIError(t, err, tt.status, tt.code)
		})
	}
}

func TestMe_BearerAndBasic(t *testing.T) {
	client := setupAuthContainer(t)

	session := login(t, client, userUsername, userPassword)
	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, userUsername, me.Username)
	require.Equal(t, "Bearer", me.Scheme)

	me, err = client.MeWithBasic(t.Context(), managerUsername, managerPassword)
	require.NoError(t, err)
	require.Equal(t, managerUsername, me.Username)
	require.Equal(t, "Basic", me.Scheme)

	_, err = client.MeWithBasic(t.Context(), managerUsername, "wrong")
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeUnauthorized)
}

func TestMe_RejectsForgedToken(t *testing.T) {
	client := setupAuthContainer(t)

	session := client.NewSessionFromTokens("not.a.jwt", "", 900)
	_, err := session.Me(t.Context())
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeUnauthorized)
}
