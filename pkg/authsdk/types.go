package authsdk

// ============================================================================
// Token Types
// ============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/auth/refresh and /api/auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is returned by login and refresh. User is only set on login.
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int       `json:"expiresIn"` // seconds
	User         *UserInfo `json:"user,omitempty"`
}

// LogoutAllResponse reports how many refresh tokens were revoked.
type LogoutAllResponse struct {
	Revoked int `json:"revoked"`
}

// ============================================================================
// User Types
// ============================================================================

// UserInfo is the public view of a directory user. Secrets are never sent.
type UserInfo struct {
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	UserInfo

	// Scheme is the authentication scheme that resolved the caller ("Basic" or "Bearer").
	Scheme string `json:"scheme"`
}

// ListUsersResponse is returned by GET /api/users.
type ListUsersResponse struct {
	Users []UserInfo `json:"users"`
}

// ============================================================================
// Sample Resource Types
// ============================================================================

// MessageResponse is returned by the public sample endpoint.
type MessageResponse struct {
	Message string `json:"message"`
}

// ReportsResponse is returned by GET /api/reports.
type ReportsResponse struct {
	RequestedBy string   `json:"requestedBy"`
	Reports     []Report `json:"reports"`
}

// Report is one row of the sample reports payload.
type Report struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// RefreshStore indicates whether the refresh token backend answers pings
	RefreshStore string `json:"refreshStore"`
}
