//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestUsers_AdminOnly(t *testing.T) {
	client := setupAuthContainer(t)

	admin := login(t, client, adminUsername, adminPassword)
	users, err := admin.ListUsers(t.Context())
	require.NoError(t, err)
	require.Len(t, users, 3)

	manager := login(t, client, managerUsername, managerPassword)
	_, err = manager.ListUsers(t.Context())
	assertAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeForbidden)
}

func TestReports_ManagerOrAdmin(t *testing.T) {
	client := setupAuthContainer(t)

	for _, creds := range [][2]string{{managerUsername, managerPassword}, {adminUsername, adminPassword}} {
		session := login(t, client, creds[0], creds[1])
		reports, err := session.GetReports(t.Context())
		require.NoError(t, err)
		require.Equal(t, creds[0], reports.RequestedBy)
		require.NotEmpty(t, reports.Reports)
	}

	user := login(t, client, userUsername, userPassword)
	_, err := user.GetReports(t.Context())
	assertAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeForbidden)
}
