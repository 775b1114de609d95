// Package redis is a refresh token store backed by Redis. Each token is a
// string key holding a small JSON record with a native TTL; a set per owner
// indexes that owner's tokens for bulk revocation.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "tokenauth:refresh:"

type record struct {
	Owner     string `json:"owner"`
	ExpiresAt int64  `json:"expires_at"` // unix milliseconds
	CreatedAt int64  `json:"created_at"` // unix milliseconds
}

func (r record) expired(now time.Time) bool {
	return !now.Before(time.UnixMilli(r.ExpiresAt))
}

type Store struct {
	client goredis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ store.RefreshTokens = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New wraps client. An empty prefix falls back to DefaultKeyPrefix.
func New(client goredis.UniversalClient, prefix string, opts ...Option) *Store {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultKeyPrefix
	}
	s := &Store{client: client, prefix: prefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) tokenKey(hash string) string  { return s.prefix + "t:" + hash }
func (s *Store) ownerKey(owner string) string { return s.prefix + "o:" + owner }

func (s *Store) Store(ctx context.Context, owner, token string, expiresAt time.Time) error {
	owner = domain.NormalizeUsername(owner)
	if owner == "" || strings.TrimSpace(token) == "" {
		return store.ErrInvalidArgument
	}

	hash := cryptox.FingerprintToken(token)
	key := s.tokenKey(hash)
	now := s.now()

	// Drop the index entry of a previous owner when the token is reassigned.
	if prev, err := s.get(ctx, key); err == nil && prev.Owner != owner {
		if err := s.client.SRem(ctx, s.ownerKey(prev.Owner), hash).Err(); err != nil {
			return fmt.Errorf("redis store refresh token: %w", err)
		}
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("redis store refresh token: %w", err)
	}

	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		// Already dead on arrival; make sure nothing older lingers.
		_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.Del(ctx, key)
			p.SRem(ctx, s.ownerKey(owner), hash)
			return nil
		})
		if err != nil {
			return fmt.Errorf("redis store refresh token: %w", err)
		}
		return nil
	}

	payload, err := json.Marshal(record{
		Owner:     owner,
		ExpiresAt: expiresAt.UnixMilli(),
		CreatedAt: now.UnixMilli(),
	})
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, key, payload, ttl)
		p.SAdd(ctx, s.ownerKey(owner), hash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store refresh token: %w", err)
	}
	return nil
}

func (s *Store) Validate(ctx context.Context, token string) (string, error) {
	hash := cryptox.FingerprintToken(token)
	rec, err := s.get(ctx, s.tokenKey(hash))
	if err != nil {
		return "", err
	}

	if rec.expired(s.now()) {
		if err := s.remove(ctx, hash, rec.Owner); err != nil {
			return "", err
		}
		return "", store.ErrNotFound
	}
	return rec.Owner, nil
}

func (s *Store) Consume(ctx context.Context, token string) (string, error) {
	hash := cryptox.FingerprintToken(token)

	raw, err := s.client.GetDel(ctx, s.tokenKey(hash)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("redis consume refresh token: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("redis decode refresh token: %w", err)
	}

	if err := s.client.SRem(ctx, s.ownerKey(rec.Owner), hash).Err(); err != nil {
		return "", fmt.Errorf("redis consume refresh token: %w", err)
	}

	if rec.expired(s.now()) {
		return "", store.ErrNotFound
	}
	return rec.Owner, nil
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	hash := cryptox.FingerprintToken(token)
	rec, err := s.get(ctx, s.tokenKey(hash))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.remove(ctx, hash, rec.Owner)
}

func (s *Store) RevokeAllForOwner(ctx context.Context, owner string) (int, error) {
	ownerKey := s.ownerKey(domain.NormalizeUsername(owner))

	hashes, err := s.client.SMembers(ctx, ownerKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis list owner refresh tokens: %w", err)
	}
	if len(hashes) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(hashes))
	for _, h := range hashes {
		keys = append(keys, s.tokenKey(h))
	}

	var deleted *goredis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		deleted = p.Del(ctx, keys...)
		p.Del(ctx, ownerKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis revoke owner refresh tokens: %w", err)
	}
	return int(deleted.Val()), nil
}

// DeleteExpired relies on Redis TTLs for the records themselves and prunes
// owner index entries whose record is gone or past its stored expiry. The
// count is the number of index entries pruned.
func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	now := s.now()
	removed := 0

	iter := s.client.Scan(ctx, 0, s.prefix+"o:*", 100).Iterator()
	for iter.Next(ctx) {
		ownerKey := iter.Val()
		owner := strings.TrimPrefix(ownerKey, s.prefix+"o:")

		hashes, err := s.client.SMembers(ctx, ownerKey).Result()
		if err != nil {
			return removed, fmt.Errorf("redis sweep: %w", err)
		}

		for _, h := range hashes {
			rec, err := s.get(ctx, s.tokenKey(h))
			switch {
			case errors.Is(err, store.ErrNotFound):
				if err := s.client.SRem(ctx, ownerKey, h).Err(); err != nil {
					return removed, fmt.Errorf("redis sweep: %w", err)
				}
				removed++
			case err != nil:
				return removed, err
			case rec.expired(now):
				if err := s.remove(ctx, h, owner); err != nil {
					return removed, err
				}
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis sweep: %w", err)
	}

	return removed, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) get(ctx context.Context, key string) (record, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return record{}, store.ErrNotFound
		}
		return record{}, fmt.Errorf("redis get refresh token: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, fmt.Errorf("redis decode refresh token: %w", err)
	}
	return rec, nil
}

func (s *Store) remove(ctx context.Context, hash, owner string) error {
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, s.tokenKey(hash))
		p.SRem(ctx, s.ownerKey(owner), hash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis remove refresh token: %w", err)
	}
	return nil
}
