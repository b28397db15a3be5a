// Package scheduler wraps gocron for the bot's single recurring job: the
// midnight rollover in the household time zone.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/homebot/internal/logfields"
)

// Scheduler wraps a gocron scheduler for managing recurring tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// New creates a scheduler whose wall-clock times are interpreted in loc.
func New(loc *time.Location) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleDailyAt registers task to fire once per calendar day at the given
// local wall-clock instant. There are no catch-up semantics: a fire missed
// while the process is down simply waits for the next scheduled instant.
// Returns the job ID for later management.
func (s *Scheduler) ScheduleDailyAt(name string, hour, minute uint, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(task),
		gocron.WithName(name),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create daily job: %w", err)
	}

	slog.Info("Scheduled daily job",
		logfields.ScheduleID(job.ID().String()),
		logfields.ScheduleName(name),
		slog.String("at", fmt.Sprintf("%02d:%02d", hour, minute)))

	return job.ID().String(), nil
}
