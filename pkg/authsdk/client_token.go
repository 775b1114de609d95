package authsdk

import (
	"context"
	"net/http"
)

// Login exchanges a username and password for a token pair.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	return c.requestToken(ctx, "/api/auth/login", LoginRequest{Username: username, Password: password})
}

// Refresh rotates refreshToken. Once the server accepts the token for
// rotation it is spent, even if the owner has since disappeared
// (ErrUserNotFound). Transport failures and rate limiting leave it live.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.requestToken(ctx, "/api/auth/refresh", RefreshRequest{RefreshToken: refreshToken})
}

// Logout revokes refreshToken. The server reports success for unknown tokens too.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", RefreshRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

func (c *SDKClient) requestToken(ctx context.Context, path string, payload any) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, payload, nil)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}
