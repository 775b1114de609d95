package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// LoginHandler serves POST /api/auth/login.
type LoginHandler struct {
	TokenService *service.TokenService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}

	pair, err := h.TokenService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// RefreshHandler serves POST /api/auth/refresh.
type RefreshHandler struct {
	TokenService *service.TokenService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

// LogoutHandler serves POST /api/auth/logout. It answers 200 for every
// request, including a missing or unparsable body, so callers cannot probe
// which tokens were live.
type LogoutHandler struct {
	TokenService *service.TokenService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		slogx.FromContext(r.Context()).Debug("logout body ignored", "error", err)
		req = authsdk.RefreshRequest{}
	}

	_ = h.TokenService.Logout(r.Context(), req.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}

// LogoutAllHandler serves POST /api/auth/logout-all for the bearer's subject.
type LogoutAllHandler struct {
	TokenService *service.TokenService
}

func (h *LogoutAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(r)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	n, err := h.TokenService.LogoutAll(r.Context(), claims.Subject())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutAllResponse{Revoked: n})
}

func tokenResponse(pair *domain.TokenPair) authsdk.TokenResponse {
	resp := authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
	if pair.User != nil {
		u := userInfo(*pair.User)
		resp.User = &u
	}
	return resp
}

func userInfo(u domain.UserInfo) authsdk.UserInfo {
	return authsdk.UserInfo{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Roles:       u.Roles,
	}
}
