package httpx

import "net/http"

// RequireAnyRole lets the request through when the authenticated principal
// holds at least one of roles. It must run after AuthnMiddleware; a missing
// principal is a 401, a principal without the role a 403.
func RequireAnyRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required.")
				return
			}

			for _, role := range roles {
				if p.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteError(w, http.StatusForbidden, "forbidden", "Insufficient role.")
		})
	}
}
