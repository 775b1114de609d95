package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/idx"
)

const (
	upsertRefreshToken = `
INSERT INTO refresh_tokens (id, token_hash, owner, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (token_hash) DO UPDATE SET
    owner      = excluded.owner,
    expires_at = excluded.expires_at,
    created_at = excluded.created_at`

	getRefreshToken = `
SELECT owner, expires_at FROM refresh_tokens WHERE token_hash = ?`

	consumeRefreshToken = `
DELETE FROM refresh_tokens WHERE token_hash = ? RETURNING owner, expires_at`

	deleteRefreshToken = `
DELETE FROM refresh_tokens WHERE token_hash = ?`

	deleteExpiredRefreshToken = `
DELETE FROM refresh_tokens WHERE token_hash = ? AND expires_at <= ?`

	deleteOwnerRefreshTokens = `
DELETE FROM refresh_tokens WHERE owner = ?`

	deleteExpiredRefreshTokens = `
DELETE FROM refresh_tokens WHERE expires_at <= ?`
)

var _ store.RefreshTokens = (*Store)(nil)

func (s *Store) Store(ctx context.Context, owner, token string, expiresAt time.Time) error {
	owner = domain.NormalizeUsername(owner)
	if owner == "" || strings.TrimSpace(token) == "" {
		return store.ErrInvalidArgument
	}

	now := s.now()
	_, err := s.db.ExecContext(ctx, upsertRefreshToken,
		idx.NewAt(now).String(),
		cryptox.FingerprintToken(token),
		owner,
		toMillis(expiresAt),
		toMillis(now),
	)
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *Store) Validate(ctx context.Context, token string) (string, error) {
	hash := cryptox.FingerprintToken(token)
	now := s.now()

	var (
		owner     string
		expiresAt int64
	)
	if err := s.db.QueryRowContext(ctx, getRefreshToken, hash).Scan(&owner, &expiresAt); err != nil {
		return "", mapNotFound(err)
	}

	if !now.Before(fromMillis(expiresAt)) {
		if _, err := s.db.ExecContext(ctx, deleteExpiredRefreshToken, hash, toMillis(now)); err != nil {
			return "", fmt.Errorf("delete expired refresh token: %w", err)
		}
		return "", store.ErrNotFound
	}

	return owner, nil
}

func (s *Store) Consume(ctx context.Context, token string) (string, error) {
	var (
		owner     string
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, consumeRefreshToken, cryptox.FingerprintToken(token)).Scan(&owner, &expiresAt)
	if err != nil {
		return "", mapNotFound(err)
	}

	if !s.now().Before(fromMillis(expiresAt)) {
		return "", store.ErrNotFound
	}
	return owner, nil
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, deleteRefreshToken, cryptox.FingerprintToken(token)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *Store) RevokeAllForOwner(ctx context.Context, owner string) (int, error) {
	res, err := s.db.ExecContext(ctx, deleteOwnerRefreshTokens, domain.NormalizeUsername(owner))
	if err != nil {
		return 0, fmt.Errorf("revoke owner refresh tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, deleteExpiredRefreshTokens, toMillis(s.now()))
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
