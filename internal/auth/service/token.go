package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// TokenService drives the token lifecycle: login, refresh with rotation,
// logout and bearer authentication.
type TokenService struct {
	Validator     *CredentialValidator
	Deriver       *ClaimsDeriver
	Credentials   store.Credentials
	RefreshTokens store.RefreshTokens
	Issuer        *jwtx.Issuer
	Verifier      jwtx.Verifier
	RefreshTTL    time.Duration

	// Now overrides the clock used for refresh token expiry.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL <= 0 {
		return jwtx.DefaultRefreshTokenTTL
	}
	return s.RefreshTTL
}

// Login exchanges an identifier and secret for a token pair. Unknown
// identifiers and wrong secrets both yield ErrInvalidCredentials.
func (s *TokenService) Login(ctx context.Context, identifier, secret string) (*domain.TokenPair, error) {
	if strings.TrimSpace(identifier) == "" || strings.TrimSpace(secret) == "" {
		return nil, ErrInvalidRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims, err := s.Validator.Validate(ctx, identifier, secret)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(ctx, claims)
	if err != nil {
		return nil, err
	}
	info := claims.UserInfo()
	pair.User = &info

	slogx.FromContext(ctx).Info("login succeeded", slog.String("username", claims.Subject()))
	return pair, nil
}

// Refresh rotates a refresh token. The presented token is consumed before
// anything new is issued, so it never validates again even if issuing fails.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrInvalidRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	owner, err := s.RefreshTokens.Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("refresh token rejected")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	id, err := s.Credentials.Lookup(ctx, owner)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("refresh token owner no longer exists", slog.String("username", owner))
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	pair, err := s.issuePair(ctx, s.Deriver.Derive(id))
	if err != nil {
		return nil, err
	}

	l.Info("refresh token rotated", slog.String("username", owner))
	return pair, nil
}

// Logout revokes a refresh token. It always succeeds; store failures are
// only logged.
func (s *TokenService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	if err := s.RefreshTokens.Revoke(ctx, refreshToken); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke refresh token", "error", err)
	}
	return nil
}

// LogoutAll revokes every refresh token held by owner and reports how many
// were removed.
func (s *TokenService) LogoutAll(ctx context.Context, owner string) (int, error) {
	owner = domain.NormalizeUsername(owner)
	if owner == "" {
		return 0, ErrInvalidRequest
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n, err := s.RefreshTokens.RevokeAllForOwner(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens: %w", err)
	}

	slogx.FromContext(ctx).Info("revoked all refresh tokens", slog.String("username", owner), slog.Int("count", n))
	return n, nil
}

// Authenticate verifies a bearer access token and returns its claims. Every
// failure, including a panic inside verification, is ErrUnauthorized; the
// specific reason is logged and wrapped alongside the jwtx error, so callers
// can match it with errors.Is; it is never shown to a client.
func (s *TokenService) Authenticate(ctx context.Context, bearer string) (set domain.ClaimSet, err error) {
	l := slogx.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			l.Error("access token verification panicked", "panic", r)
			set, err = nil, fmt.Errorf("%w: internal", ErrUnauthorized)
		}
	}()

	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, jwtx.ErrMalformed)
	}

	claims, verr := s.Verifier.Verify(bearer)
	if verr != nil {
		reason := jwtx.Reason(verr)
		if reason == "internal" {
			l.Error("access token verification failed", "error", verr)
		} else {
			l.Warn("access token rejected", slog.String("reason", reason))
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnauthorized, reason, verr)
	}

	return fromJWT(claims), nil
}

// ExpiresIn is the access token lifetime reported to clients.
func (s *TokenService) ExpiresIn() time.Duration { return s.Issuer.TTL() }

func (s *TokenService) issuePair(ctx context.Context, claims domain.ClaimSet) (*domain.TokenPair, error) {
	access, err := s.Issuer.Issue(toJWT(claims))
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := cryptox.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.RefreshTokens.Store(ctx, claims.Subject(), refresh, s.now().Add(s.refreshTTL())); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.TokenTypeBearer,
		ExpiresIn:    s.Issuer.TTL(),
	}, nil
}
