package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops expired in-process state. The memory store implements it;
// Redis expires keys on its own and needs no sweeping.
type Sweeper interface {
	Sweep(now time.Time)
}

// Pruner deletes audit rows older than the cutoff and reports how many
// went.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// HousekeepingService periodically sweeps expired in-memory entries and
// prunes aged audit rows so neither grows without bound.
type HousekeepingService struct {
	Sweeper   Sweeper
	Pruner    Pruner
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. Interval defaults
// to 10 minutes and retention to 30 days when zero or negative. Sweeper
// and Pruner may each be nil when the deployment has nothing of that kind
// to clean.
func NewHousekeepingService(sweeper Sweeper, pruner Pruner, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	return &HousekeepingService{
		Sweeper:   sweeper,
		Pruner:    pruner,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking; call Stop() to gracefully shut the worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
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

// cleanup performs one pass. Each step is independent so a failing prune
// never blocks the sweep.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := time.Now()

	if s.Sweeper != nil {
		s.Sweeper.Sweep(now)
		s.Logger.Debug("swept expired store entries")
	}

	if s.Pruner != nil {
		cutoff := now.Add(-s.Retention)
		n, err := s.Pruner.Prune(ctx, cutoff)
		if err != nil {
			s.Logger.Error("failed to prune audit events", "error", err)
		} else if n > 0 {
			s.Logger.Info("pruned audit events", "deleted", n, "cutoff", cutoff)
		}
	}
}
