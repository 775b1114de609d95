package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

// ReadyzHandler answers 503 while the refresh token store does not respond
// to pings.
func ReadyzHandler(startTime time.Time, version string, tokens store.RefreshTokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{RefreshStore: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := tokens.Ping(r.Context()); err != nil {
			checks.RefreshStore = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
