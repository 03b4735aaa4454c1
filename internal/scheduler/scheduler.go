package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/vigil-dev/vigil/internal/services"
)

// Scheduler triggers the alerting pass on a fixed interval. One goroutine,
// one pass at a time: a slow pass delays the next tick instead of overlapping
// it.
type Scheduler struct {
	alerting *services.AlertingService
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler(alerting *services.AlertingService, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		alerting: alerting,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the pass loop with an immediate first pass.
func (s *Scheduler) Start() {
	log.Printf("Starting alert scheduler (interval %s)", s.interval)

	go func() {
		s.runPass()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.runPass()
			}
		}
	}()
}

// Stop cancels the loop. An in-flight pass finishes on its own; its saves may
// or may not have committed, which the at-least-once retry absorbs.
func (s *Scheduler) Stop() {
	log.Println("Stopping alert scheduler")
	s.cancel()
}

func (s *Scheduler) runPass() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Alerting pass panic: %v", r)
		}
	}()

	if err := s.alerting.RunPass(s.ctx); err != nil {
		log.Printf("Alerting pass finished with errors: %v", err)
	}
}
