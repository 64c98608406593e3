package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ls-softworks/comitte/internal/comitte/store"
	"github.com/ls-softworks/comitte/pkg/sessionx"
)

// HousekeepingService periodically sweeps stale session bookkeeping and
// expired password reset tokens to prevent unbounded growth.
type HousekeepingService struct {
	Store    store.Store
	Sessions *sessionx.Tracker
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, sessions *sessionx.Tracker, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual sweeps. Each sweep is independent; failures in
// one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	s.Logger.Info("starting housekeeping cleanup")

	swept := s.Sessions.Sweep()
	s.Logger.Debug("swept stale session records", "count", swept)

	deleted, err := s.Store.PasswordResetTokens().DeleteExpired(ctx, time.Now())
	if err != nil {
		s.Logger.Error("failed to delete expired password reset tokens", "error", err)
	} else {
		s.Logger.Debug("deleted expired password reset tokens", "count", deleted)
	}

	s.Logger.Info("housekeeping cleanup completed")
}
