package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler drives Manager.TickAll on a fixed interval.
type Scheduler struct {
	cron    *cron.Cron
	manager *Manager
	logger  *zap.SugaredLogger
}

func NewScheduler(manager *Manager, interval time.Duration, logger *zap.SugaredLogger) (*Scheduler, error) {
	c := cron.New(cron.WithSeconds())
	s := &Scheduler{cron: c, manager: manager, logger: logger}

	schedule := fmt.Sprintf("@every %s", interval)
	if _, err := c.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid tick interval %s: %w", interval, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("Monitor tick panicked: %v", r)
		}
	}()
	s.manager.TickAll(context.Background())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running tick to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Monitor scheduler did not stop in time")
	}
}
