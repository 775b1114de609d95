package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// ErrNoCredentials is returned when no scheme matches the request.
var ErrNoCredentials = errors.New("httpx: no credentials presented")

// Authenticator turns the credentials on a request into a Principal.
type Authenticator interface {
	Authenticate(r *http.Request) (Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(r *http.Request) (Principal, error)

func (f AuthenticatorFunc) Authenticate(r *http.Request) (Principal, error) { return f(r) }

// Scheme pairs a predicate that recognises a credential format with the
// Authenticator that checks it.
type Scheme struct {
	Name          string
	Challenge     string // WWW-Authenticate value sent on 401
	Match         func(r *http.Request) bool
	Authenticator Authenticator
}

// Schemes is an ordered strategy table. The first scheme whose predicate
// matches handles the request; later schemes are not consulted even if it
// rejects.
type Schemes []Scheme

// Authenticate runs the first matching scheme. It returns ErrNoCredentials
// when nothing matches.
func (s Schemes) Authenticate(r *http.Request) (Principal, string, error) {
	for _, sc := range s {
		if sc.Match(r) {
			p, err := sc.Authenticator.Authenticate(r)
			return p, sc.Name, err
		}
	}
	return nil, "", ErrNoCredentials
}

// Only returns the subset of schemes with the given names, preserving order.
func (s Schemes) Only(names ...string) Schemes {
	var out Schemes
	for _, sc := range s {
		for _, n := range names {
			if strings.EqualFold(sc.Name, n) {
				out = append(out, sc)
				break
			}
		}
	}
	return out
}

// WriteChallenge writes a 401 carrying one WWW-Authenticate header per scheme.
func (s Schemes) WriteChallenge(w http.ResponseWriter) {
	for _, sc := range s {
		if sc.Challenge != "" {
			w.Header().Add("WWW-Authenticate", sc.Challenge)
		}
	}
	WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required.")
}

// AuthnMiddleware authenticates every request through schemes and stores the
// Principal in the context. Failures get a generic 401; the reason is only
// logged.
func AuthnMiddleware(schemes Schemes) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, scheme, err := schemes.Authenticate(r)
			if err != nil || p == nil {
				slogx.FromContext(r.Context()).Debug("authentication failed", "scheme", scheme, "err", err)
				schemes.WriteChallenge(w)
				return
			}

			ctx := WithPrincipal(r.Context(), scheme, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HasAuthScheme returns a predicate matching "Authorization: <name> ..."
// with the scheme name compared case-insensitively.
func HasAuthScheme(name string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		_, ok := AuthCredential(r, name)
		return ok
	}
}

// AuthCredential returns the text after "<name> " in the Authorization header.
func AuthCredential(r *http.Request, name string) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) <= len(name) || !strings.EqualFold(h[:len(name)], name) || h[len(name)] != ' ' {
		return "", false
	}
	return strings.TrimSpace(h[len(name)+1:]), true
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	tok, ok := AuthCredential(r, "Bearer")
	return tok, ok && tok != ""
}
