package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

var errBadBasicHeader = errors.New("malformed basic credentials")

// schemes is the ordered strategy table shared by every protected route.
// Basic checks the username and password on each request; Bearer verifies
// an access token.
func (r *Router) schemes() httpx.Schemes {
	return httpx.Schemes{
		{
			Name:      SchemeBasic,
			Challenge: `Basic realm="tokenauth"`,
			Match:     httpx.HasAuthScheme(SchemeBasic),
			Authenticator: httpx.AuthenticatorFunc(func(req *http.Request) (httpx.Principal, error) {
				username, password, ok := req.BasicAuth()
				if !ok {
					return nil, errBadBasicHeader
				}
				set, err := r.Validator.Validate(req.Context(), username, password)
				if err != nil {
					return nil, err
				}
				return set, nil
			}),
		},
		{
			Name:      SchemeBearer,
			Challenge: SchemeBearer,
			Match:     httpx.HasAuthScheme(SchemeBearer),
			Authenticator: httpx.AuthenticatorFunc(func(req *http.Request) (httpx.Principal, error) {
				token, _ := httpx.BearerToken(req)
				set, err := r.TokenService.Authenticate(req.Context(), token)
				if err != nil {
					return nil, err
				}
				return set, nil
			}),
		},
	}
}

// claimsFromRequest returns the claim set stored by AuthnMiddleware.
func claimsFromRequest(r *http.Request) (domain.ClaimSet, bool) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		return nil, false
	}
	set, ok := p.(domain.ClaimSet)
	return set, ok
}
