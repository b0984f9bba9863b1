package event

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically removes expired events.
type Sweeper struct {
	repo     EventRepository
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(repo EventRepository, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{repo: repo, interval: interval, logger: logger}
}

// Run sweeps once per interval until ctx is cancelled. A non-positive interval disables it.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("expiry sweeper disabled")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass. Failures are logged and retried on the next tick.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	removed, err := s.repo.SweepExpired(ctx)
	if err != nil {
		s.logger.Warn("expiry sweep failed", zap.Error(err))
		return 0
	}
	if removed > 0 {
		s.logger.Info("expired events removed", zap.Int("count", removed))
	}
	return removed
}
