/*
Package authsdk is a Go client for the token authentication service, and the
home of the request, response and error types shared with the server.

# SDKClient vs Session

SDKClient covers the unauthenticated endpoints and creates Sessions:

	client := authsdk.NewSDKClient("http://localhost:8080")

	health, err := client.GetReadiness(ctx)

	session, err := client.AuthenticateWithPassword(ctx, "admin", "admin123")

A Session carries an access and refresh token pair. Every Session method
checks the access token first and, when it is within 30 seconds of expiry,
rotates the pair through POST /api/auth/refresh before making the call:

	me, err := session.Me(ctx)
	users, err := session.ListUsers(ctx) // Admin only

Refresh tokens are single use. A failed refresh leaves the Session without a
refresh token; log in again.

# Errors

Failed calls return *APIError. Compare with errors.Is against the predefined
values, which match on the error code:

	_, err := client.Login(ctx, "admin", "wrong")
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// ...
	}

The server never says why a credential or token was rejected.
*/
package authsdk
