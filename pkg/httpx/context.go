package httpx

import "context"

// Principal is the authenticated caller as seen by authorization checks.
type Principal interface {
	Subject() string
	HasRole(name string) bool
}

type (
	principalKey struct{}
	schemeKey    struct{}
)

// WithPrincipal attaches p and the scheme that produced it to ctx.
func WithPrincipal(ctx context.Context, scheme string, p Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, p)
	return context.WithValue(ctx, schemeKey{}, scheme)
}

// PrincipalFromContext returns the caller set by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p != nil
}

// SchemeFromContext names the scheme that authenticated the caller.
func SchemeFromContext(ctx context.Context) string {
	s, _ := ctx.Value(schemeKey{}).(string)
	return s
}
