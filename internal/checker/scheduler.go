package checker

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler runs the chapter check on a fixed interval.
type Scheduler struct {
	log        *slog.Logger
	runner     Runner
	interval   time.Duration
	runOnStart bool
}

func NewScheduler(log *slog.Logger, runner Runner, interval time.Duration, runOnStart bool) *Scheduler {
	return &Scheduler{
		log:        log,
		runner:     runner,
		interval:   interval,
		runOnStart: runOnStart,
	}
}

// Start returns immediately; runs continue until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("start chapter check scheduler", "interval", s.interval)
	go func() {
		if s.runOnStart {
			s.runOnce(ctx)
		}
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx)
			case <-ctx.Done():
				s.log.Info("chapter check scheduler stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.runner.Run(ctx); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			s.log.Debug("skipping scheduled check, previous one still running")
			return
		}
		s.log.Error("scheduled chapter check failed", "error", err)
	}
}
