package core

// scheduler.go rebuilds every silver table on a fixed interval while the
// HTTP server runs. A scheduled run that finds another run in progress is
// skipped, not queued.

import (
	"context"
	"errors"
	"time"
)

// StartScheduler runs a full rebuild every interval until ctx is done.
// The first run starts after one interval. A non-positive interval returns
// immediately.
func (s *Service) StartScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.log.Info("run scheduler started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("run scheduler stopped")
			return
		case <-ticker.C:
			s.scheduledRun(ctx)
		}
	}
}

func (s *Service) scheduledRun(ctx context.Context) {
	res, err := s.Run(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.log.Info("scheduled run skipped, another run is in progress")
	case err != nil:
		s.log.Error("scheduled run failed", "error", err)
	default:
		if failed := len(res.Failed()); failed > 0 {
			s.log.Warn("scheduled run had failures", "run_id", res.RunID, "failed", failed)
		}
	}
}
