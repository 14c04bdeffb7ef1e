package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"weather-lookup/pkg/logger"
)

const defaultJobTimeout = 30 * time.Second

// Refresher reloads whatever is currently selected.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Scheduler periodically refreshes the selected location's conditions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
	l         *logger.Logger
}

func New(target Refresher, interval time.Duration, l *logger.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		target:    target,
		interval:  interval,
		timeout:   defaultJobTimeout,
		l:         l,
	}
}

// Start schedules the refresh job. A zero interval disables it.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.l.Info("scheduler: refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.l.Info("scheduler: started", map[string]any{"interval": s.interval.String()})
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.l.Debug("scheduler: refreshing current conditions")
	s.target.Refresh(ctx)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
