package http

import (
	"net/http"
	"slices"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// MeHandler serves GET /api/auth/me for whichever scheme authenticated the caller.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromRequest(r)
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		UserInfo: userInfo(claims.UserInfo()),
		Scheme:   httpx.SchemeFromContext(r.Context()),
	})
}

// UsersHandler serves GET /api/users. Secrets never leave the store.
type UsersHandler struct {
	Credentials store.Credentials
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Credentials.List(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to list users", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	users := make([]authsdk.UserInfo, 0, len(ids))
	for _, id := range ids {
		roles := slices.Clone(id.Roles)
		if roles == nil {
			roles = []string{}
		}
		users = append(users, authsdk.UserInfo{
			Username:    id.Username,
			DisplayName: id.DisplayName,
			Email:       id.EmailOrDefault(),
			Roles:       roles,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ListUsersResponse{Users: users})
}

var sampleReports = []authsdk.Report{
	{ID: 1, Title: "Quarterly revenue"},
	{ID: 2, Title: "Active sessions"},
}

// ReportsHandler serves GET /api/reports.
func ReportsHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromRequest(r)
	httpx.WriteJSON(w, http.StatusOK, authsdk.ReportsResponse{
		RequestedBy: claims.Subject(),
		Reports:     sampleReports,
	})
}

// PublicHandler serves GET /api/public.
func PublicHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "This endpoint is public."})
}
