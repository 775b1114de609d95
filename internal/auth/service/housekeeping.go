package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

// DefaultHousekeepingInterval is used when no interval is configured.
const DefaultHousekeepingInterval = time.Hour

// HousekeepingService periodically deletes expired refresh tokens so the
// store does not grow without bound between reads.
type HousekeepingService struct {
	Store    store.RefreshTokens
	Logger   *slog.Logger
	Interval time.Duration
	Timeout  time.Duration // per sweep; defaults to Interval

	// Internal channels for lifecycle management
	stopCh    chan struct{}
	doneCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(s store.RefreshTokens, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Store:    s,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking. Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	s.startOnce.Do(func() {
		s.started = true
		go s.run()
		s.Logger.Info("housekeeping service started", "interval", s.Interval)
	})
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup. Safe to call
// more than once, and before Start.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.startOnce.Do(func() {})
		if !s.started {
			return
		}
		<-s.doneCh
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs a single sweep and returns the number of records removed.
// Failures and panics are logged, never propagated.
func (s *HousekeepingService) RunOnce(ctx context.Context) (n int) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("housekeeping cleanup panicked", "panic", r)
			n = 0
		}
	}()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = s.Interval
	}
	if timeout <= 0 {
		timeout = DefaultHousekeepingInterval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	n, err := s.Store.DeleteExpired(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
		return 0
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", n)
	return n
}
