package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/store"
)

// HousekeepingService periodically drops revocation records whose tokens
// have expired on their own.
type HousekeepingService struct {
	Revocations store.Revocations
	Logger      *slog.Logger
	Interval    time.Duration
	Now         func() time.Time
	Metrics     *Metrics

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to 10 minutes.
func NewHousekeepingService(revocations store.Revocations, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &HousekeepingService{
		Revocations: revocations,
		Logger:      logger,
		Interval:    interval,
		Now:         time.Now,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start runs the sweep loop in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

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

func (s *HousekeepingService) cleanup() {
	n, err := s.Sweep(context.Background())
	if err != nil {
		s.Logger.Error("failed to delete expired revocations", "error", err)
		return
	}
	s.Logger.Info("housekeeping cleanup completed", "revocations_removed", n)
}

// Sweep removes every revocation whose KeepUntil is at or before now.
func (s *HousekeepingService) Sweep(ctx context.Context) (int64, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	n, err := s.Revocations.DeleteExpired(ctx, now().UTC())
	if err != nil {
		return 0, err
	}
	s.Metrics.observeCollected(n)
	return n, nil
}
