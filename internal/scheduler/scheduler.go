package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Trigger starts a synchronization run unless one is already in progress
type Trigger interface {
	TryRun(ctx context.Context) bool
}

// Scheduler fires a synchronization run after an initial delay and then at a
// fixed interval until the context is cancelled
type Scheduler struct {
	runner       Trigger
	initialDelay time.Duration
	interval     time.Duration
	logger       *zap.Logger
}

func New(runner Trigger, initialDelay, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		initialDelay: initialDelay,
		interval:     interval,
		logger:       logger,
	}
}

// Start blocks until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Synchronization scheduler started",
		zap.Duration("initial_delay", s.initialDelay),
		zap.Duration("interval", s.interval),
	)

	timer := time.NewTimer(s.initialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		s.runner.TryRun(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Synchronization scheduler stopped")
			return
		case <-ticker.C:
			s.runner.TryRun(ctx)
		}
	}
}
