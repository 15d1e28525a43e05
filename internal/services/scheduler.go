package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	applog "pharmabot/internal/log"
)

// Scheduler owns the recurring expiry-scan cadence. It is constructed
// at startup and stopped from the shutdown path; a failing or panicking
// tick is contained and the next tick fires on schedule. Overlap policy
// is skip-if-running.
type Scheduler struct {
	cron *cron.Cron
	busy atomic.Bool
}

func NewScheduler() *Scheduler {
	// Six-field specs, seconds first, matching the cadence config.
	return &Scheduler{cron: cron.New(cron.WithSeconds())}
}

// Start registers tick under the cron spec and starts the timer loop.
func (s *Scheduler) Start(spec string, tick func() error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if !s.busy.CompareAndSwap(false, true) {
			applog.Warn("scheduler.tick.skip", map[string]any{"reason": "previous tick still running"})
			return
		}
		defer s.busy.Store(false)
		defer func() {
			if r := recover(); r != nil {
				applog.Error("scheduler.tick.panic", fmt.Errorf("%v", r), nil)
			}
		}()
		if err := tick(); err != nil {
			applog.Error("scheduler.tick", err, nil)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.cron.Start()
	applog.Info("scheduler.started", map[string]any{"spec": spec})
	return nil
}

// Stop prevents further ticks and waits for an in-flight tick to finish,
// bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		applog.Warn("scheduler.stop.timeout", nil)
	}
}
