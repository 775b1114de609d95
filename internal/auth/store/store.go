package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
)

var (
	ErrNotFound        = errors.New("store: not found")
	ErrAlreadyExists   = errors.New("store: already exists")
	ErrInvalidArgument = errors.New("store: invalid argument")
)

// Credentials is the read-only identity directory. Implementations are
// loaded once at startup and must be safe for concurrent reads.
type Credentials interface {
	// Lookup returns the identity for username, matched case-insensitively.
	// Returns ErrNotFound when no identity exists.
	Lookup(ctx context.Context, username string) (domain.Identity, error)

	// List returns every identity ordered by username.
	List(ctx context.Context) ([]domain.Identity, error)
}

// RefreshTokens tracks opaque refresh tokens. Every driver (memory, sqlite,
// redis) must be safe for concurrent use and satisfy storetest.RunRefreshTokens.
type RefreshTokens interface {
	// Store upserts a record for token. Blank owner or token returns
	// ErrInvalidArgument.
	Store(ctx context.Context, owner, token string, expiresAt time.Time) error

	// Validate returns the owner of an unexpired token. Expired records are
	// deleted as a side effect. Misses and expired tokens return ErrNotFound.
	Validate(ctx context.Context, token string) (string, error)

	// Consume atomically validates and deletes token, returning its owner.
	// Of several concurrent calls for the same token at most one succeeds;
	// the rest see ErrNotFound.
	Consume(ctx context.Context, token string) (string, error)

	// Revoke deletes token if present. Absent tokens are not an error.
	Revoke(ctx context.Context, token string) error

	// RevokeAllForOwner deletes every record owned by owner (case-insensitive)
	// and returns how many were removed.
	RevokeAllForOwner(ctx context.Context, owner string) (int, error)

	// DeleteExpired purges expired records and returns how many were removed.
	DeleteExpired(ctx context.Context) (int, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}
