package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

// DefaultSweepInterval bounds how often a mutation may trigger an
// opportunistic expiry sweep.
const DefaultSweepInterval = time.Minute

// RefreshTokenStore keeps refresh token records in a map guarded by a
// RWMutex, with a secondary index from owner to that owner's tokens.
type RefreshTokenStore struct {
	mu      sync.RWMutex
	records map[string]domain.RefreshToken
	byOwner map[string]map[string]struct{}

	now           func() time.Time
	logger        *slog.Logger
	sweepInterval time.Duration

	sweeping  atomic.Bool
	lastSweep atomic.Int64 // unix nanos

	// sweepMu orders sweeps.Add against Close's Wait.
	sweepMu sync.Mutex
	closed  bool
	sweeps  sync.WaitGroup
}

type Option func(*RefreshTokenStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *RefreshTokenStore) { s.now = now }
}

// WithLogger sets the logger used for sweep diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *RefreshTokenStore) { s.logger = l }
}

// WithSweepInterval sets the minimum gap between opportunistic sweeps.
// Zero or negative disables them; the housekeeping ticker still runs.
func WithSweepInterval(d time.Duration) Option {
	return func(s *RefreshTokenStore) { s.sweepInterval = d }
}

func NewRefreshTokenStore(opts ...Option) *RefreshTokenStore {
	s := &RefreshTokenStore{
		records:       make(map[string]domain.RefreshToken),
		byOwner:       make(map[string]map[string]struct{}),
		now:           time.Now,
		logger:        slog.Default(),
		sweepInterval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep.Store(s.now().UnixNano())
	return s
}

func (s *RefreshTokenStore) Store(_ context.Context, owner, token string, expiresAt time.Time) error {
	owner = domain.NormalizeUsername(owner)
	if owner == "" || strings.TrimSpace(token) == "" {
		return store.ErrInvalidArgument
	}

	s.mu.Lock()
	s.removeLocked(token)
	s.records[token] = domain.RefreshToken{
		Token:     token,
		Owner:     owner,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	idx, ok := s.byOwner[owner]
	if !ok {
		idx = make(map[string]struct{})
		s.byOwner[owner] = idx
	}
	idx[token] = struct{}{}
	s.mu.Unlock()

	s.maybeSweep()
	return nil
}

func (s *RefreshTokenStore) Validate(_ context.Context, token string) (string, error) {
	now := s.now()

	s.mu.RLock()
	rec, ok := s.records[token]
	s.mu.RUnlock()
	if !ok {
		return "", store.ErrNotFound
	}

	if rec.Expired(now) {
		s.mu.Lock()
		// recheck: the record may have been replaced since the read
		if cur, ok := s.records[token]; ok && cur.Expired(now) {
			s.removeLocked(token)
		}
		s.mu.Unlock()
		return "", store.ErrNotFound
	}

	return rec.Owner, nil
}

func (s *RefreshTokenStore) Consume(_ context.Context, token string) (string, error) {
	now := s.now()

	s.mu.Lock()
	rec, ok := s.records[token]
	if ok {
		s.removeLocked(token)
	}
	s.mu.Unlock()

	if !ok || rec.Expired(now) {
		return "", store.ErrNotFound
	}

	s.maybeSweep()
	return rec.Owner, nil
}

func (s *RefreshTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	s.removeLocked(token)
	s.mu.Unlock()

	s.maybeSweep()
	return nil
}

func (s *RefreshTokenStore) RevokeAllForOwner(_ context.Context, owner string) (int, error) {
	owner = domain.NormalizeUsername(owner)

	s.mu.Lock()
	idx := s.byOwner[owner]
	n := len(idx)
	for token := range idx {
		delete(s.records, token)
	}
	delete(s.byOwner, owner)
	s.mu.Unlock()

	s.maybeSweep()
	return n, nil
}

func (s *RefreshTokenStore) DeleteExpired(_ context.Context) (int, error) {
	now := s.now()
	s.lastSweep.Store(now.UnixNano())

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for token, rec := range s.records {
		if rec.Expired(now) {
			s.removeLocked(token)
			n++
		}
	}
	return n, nil
}

func (s *RefreshTokenStore) Ping(context.Context) error { return nil }

// Close stops opportunistic sweeps and waits for an in-flight one to
// finish. The store stays usable afterwards.
func (s *RefreshTokenStore) Close() error {
	s.sweepMu.Lock()
	s.closed = true
	s.sweepMu.Unlock()

	s.sweeps.Wait()
	return nil
}

// Len reports the number of stored records, expired or not.
func (s *RefreshTokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// removeLocked deletes token from both maps. Caller holds s.mu.
func (s *RefreshTokenStore) removeLocked(token string) {
	rec, ok := s.records[token]
	if !ok {
		return
	}
	delete(s.records, token)
	if idx, ok := s.byOwner[rec.Owner]; ok {
		delete(idx, token)
		if len(idx) == 0 {
			delete(s.byOwner, rec.Owner)
		}
	}
}

// maybeSweep starts a background DeleteExpired when the sweep interval has
// elapsed and no other sweep is running. It never blocks the caller.
func (s *RefreshTokenStore) maybeSweep() {
	if s.sweepInterval <= 0 {
		return
	}
	if s.now().UnixNano()-s.lastSweep.Load() < int64(s.sweepInterval) {
		return
	}
	if !s.sweeping.CompareAndSwap(false, true) {
		return
	}

	s.sweepMu.Lock()
	if s.closed {
		s.sweepMu.Unlock()
		s.sweeping.Store(false)
		return
	}
	s.sweeps.Add(1)
	s.sweepMu.Unlock()

	go func() {
		defer s.sweeps.Done()
		defer s.sweeping.Store(false)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("refresh token sweep panicked", "panic", r)
			}
		}()

		n, err := s.DeleteExpired(context.Background())
		if err != nil {
			s.logger.Error("refresh token sweep failed", "error", err)
			return
		}
		if n > 0 {
			s.logger.Debug("refresh token sweep removed expired records", "count", n)
		}
	}()
}
