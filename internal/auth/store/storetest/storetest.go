// Package storetest holds the behavioural contract shared by every
// store.RefreshTokens driver. Driver packages call RunRefreshTokens from
// their own tests with a factory that returns a fresh, empty store.
package storetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) store.RefreshTokens

// RunRefreshTokens exercises the full RefreshTokens contract against the
// store returned by newStore.
func RunRefreshTokens(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("store then validate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Store(ctx, "admin", "token-a", time.Now().Add(time.Hour)))

		owner, err := s.Validate(ctx, "token-a")
		require.NoError(t, err)
		require.Equal(t, "admin", owner)

		// Validate does not consume
		owner, err = s.Validate(ctx, "token-a")
		require.NoError(t, err)
		require.Equal(t, "admin", owner)
	})

	t.Run("blank arguments rejected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.ErrorIs(t, s.Store(ctx, "", "token", time.Now().Add(time.Hour)), store.ErrInvalidArgument)
		require.ErrorIs(t, s.Store(ctx, "admin", "", time.Now().Add(time.Hour)), store.ErrInvalidArgument)
		require.ErrorIs(t, s.Store(ctx, "  ", "token", time.Now().Add(time.Hour)), store.ErrInvalidArgument)
	})

	t.Run("unknown token", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Validate(ctx, "never-issued")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Consume(ctx, "never-issued")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("expired token is rejected and removed", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Store(ctx, "admin", "stale", time.Now().Add(-time.Second)))

		_, err := s.Validate(ctx, "stale")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Consume(ctx, "stale")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("upsert replaces owner and expiry", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Store(ctx, "admin", "token-u", time.Now().Add(-time.Second)))
		require.NoError(t, s.Store(ctx, "user", "token-u", time.Now().Add(time.Hour)))

		owner, err := s.Validate(ctx, "token-u")
		require.NoError(t, err)
		require.Equal(t, "user", owner)
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Store(ctx, "admin", "token-r", time.Now().Add(time.Hour)))
		require.NoError(t, s.Revoke(ctx, "token-r"))
		require.NoError(t, s.Revoke(ctx, "token-r"))
		require.NoError(t, s.Revoke(ctx, "never-issued"))

		_, err := s.Validate(ctx, "token-r")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("consume is single use", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Store(ctx, "admin", "token-c", time.Now().Add(time.Hour)))

		owner, err := s.Consume(ctx, "token-c")
		require.NoError(t, err)
		require.Equal(t, "admin", owner)

		_, err = s.Consume(ctx, "token-c")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Validate(ctx, "token-c")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("revoke all for owner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		exp := time.Now().Add(time.Hour)

		require.NoError(t, s.Store(ctx, "admin", "admin-1", exp))
		require.NoError(t, s.Store(ctx, "admin", "admin-2", exp))
		require.NoError(t, s.Store(ctx, "admin", "admin-3", exp))
		require.NoError(t, s.Store(ctx, "user", "user-1", exp))

		n, err := s.RevokeAllForOwner(ctx, "ADMIN")
		require.NoError(t, err)
		require.Equal(t, 3, n)

		for _, tok := range []string{"admin-1", "admin-2", "admin-3"} {
			_, err := s.Validate(ctx, tok)
			require.ErrorIs(t, err, store.ErrNotFound, tok)
		}

		owner, err := s.Validate(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, "user", owner)

		n, err = s.RevokeAllForOwner(ctx, "admin")
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("delete expired keeps live records", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Store(ctx, "admin", "old-1", time.Now().Add(-time.Minute)))
		require.NoError(t, s.Store(ctx, "admin", "old-2", time.Now().Add(-time.Second)))
		require.NoError(t, s.Store(ctx, "admin", "live", time.Now().Add(time.Hour)))

		_, err := s.DeleteExpired(ctx)
		require.NoError(t, err)

		owner, err := s.Validate(ctx, "live")
		require.NoError(t, err)
		require.Equal(t, "admin", owner)

		for _, tok := range []string{"old-1", "old-2"} {
			_, err := s.Validate(ctx, tok)
			require.ErrorIs(t, err, store.ErrNotFound, tok)
		}
	})

	t.Run("concurrent consume has one winner", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Store(ctx, "admin", "contended", time.Now().Add(time.Hour)))

		const workers = 32
		var wins, losses atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})

		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := s.Consume(ctx, "contended")
				switch {
				case err == nil:
					wins.Add(1)
				case err == store.ErrNotFound:
					losses.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		require.Equal(t, int32(1), wins.Load())
		require.Equal(t, int32(workers-1), losses.Load())
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Ping(context.Background()))
	})
}
