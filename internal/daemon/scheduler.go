package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron scheduler for managing periodic verification.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *slog.Logger, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		scheduler: s,
		logger:    logger,
	}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleVerify runs task every interval. A run still in progress when the
// next tick fires causes that tick to be skipped.
// Returns the job ID for later management.
func (s *Scheduler) ScheduleVerify(interval time.Duration, task func()) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("verify interval must be positive, got %s", interval)
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("verify"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic verify job: %w", err)
	}

	s.logger.Info("Scheduled periodic verification", slog.Duration("interval", interval))
	return job.ID().String(), nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}
