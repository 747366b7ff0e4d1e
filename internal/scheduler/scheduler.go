// Package scheduler runs the periodic housekeeping jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupFunc removes expired state and returns how many items it dropped
type CleanupFunc func(ctx context.Context) (int, error)

type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.SugaredLogger
	timeout time.Duration
}

func New(logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		logger:  logger,
		timeout: time.Minute,
	}
}

// Add registers fn under a standard cron spec or descriptor such as "@every 10m"
func (s *Scheduler) Add(name, spec string, fn CleanupFunc) error {
	if _, err := s.cron.AddFunc(spec, s.job(name, fn)); err != nil {
		return fmt.Errorf("error scheduling %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) job(name string, fn CleanupFunc) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		removed, err := fn(ctx)
		if err != nil {
			s.logger.Errorw("Cleanup job failed", "job", name, "error", err)
			return
		}
		if removed > 0 {
			s.logger.Infow("Cleanup job removed expired items", "job", name, "removed", removed)
		}
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for running jobs up to ctx's deadline
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Len returns the number of registered jobs
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}
