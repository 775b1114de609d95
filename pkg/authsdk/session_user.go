package authsdk

import (
	"context"
	"net/http"
)

// Me returns the authenticated caller.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var out MeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogoutAll revokes every refresh token the caller holds, on every device.
func (s *Session) LogoutAll(ctx context.Context) (int, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/auth/logout-all", nil)
	if err != nil {
		return 0, err
	}

	var out LogoutAllResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.refreshToken = ""
	s.mu.Unlock()

	return out.Revoked, nil
}

// ListUsers returns the user directory. Requires the Admin role.
func (s *Session) ListUsers(ctx context.Context) ([]UserInfo, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, err
	}

	var out ListUsersResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// GetReports returns the sample reports. Requires the Manager or Admin role.
func (s *Session) GetReports(ctx context.Context) (*ReportsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/api/reports", nil)
	if err != nil {
		return nil, err
	}

	var out ReportsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
