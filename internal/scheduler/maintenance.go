// Package scheduler enqueues recurring maintenance work on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/logging"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Enqueuer accepts background tasks.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// Job is one recurring task.
type Job struct {
	Name     string
	Schedule string
	Task     func() backlite.Task
}

// MaintenanceScheduler fires each job's task into the queue on its schedule.
type MaintenanceScheduler struct {
	queue Enqueuer
	jobs  []Job
	log   zerolog.Logger

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

func NewMaintenanceScheduler(queue Enqueuer, jobs ...Job) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		queue:   queue,
		jobs:    jobs,
		log:     logging.Component("scheduler"),
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
	}
}

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime returns when schedule fires next after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Start schedules every job and stops again when ctx is cancelled.
// An invalid schedule fails the whole start.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if len(s.jobs) == 0 {
		s.log.Info().Msg("no maintenance jobs configured")
		return nil
	}

	for _, job := range s.jobs {
		if err := ValidateCronSchedule(job.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.Schedule, job.Name, err)
		}
	}
	for _, job := range s.jobs {
		id, err := s.cron.AddFunc(job.Schedule, func() { s.fire(job) })
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
		s.entries[job.Name] = id
	}

	s.cron.Start()
	s.isRunning = true

	for _, job := range s.jobs {
		next, _ := NextRunTime(job.Schedule, time.Now())
		s.log.Info().Str("job", job.Name).Str("schedule", job.Schedule).Time("next_run", next).Msg("maintenance job scheduled")
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a firing job to finish and halts the schedule.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.log.Info().Msg("maintenance scheduler stopped")
}

// RunNow enqueues the named job immediately. Returns the task id.
func (s *MaintenanceScheduler) RunNow(name string) (string, error) {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.fire(job)
		}
	}
	return "", apperr.NotFound("RunNow", "no maintenance job named %q", name)
}

// ScheduledJob is the public view of one job.
type ScheduledJob struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}

// Jobs lists the configured jobs in registration order.
func (s *MaintenanceScheduler) Jobs() []ScheduledJob {
	out := make([]ScheduledJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, ScheduledJob{Name: job.Name, Schedule: job.Schedule, NextRun: s.NextRun(job.Name)})
	}
	return out
}

func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the named job fires next, or nil when not scheduled.
func (s *MaintenanceScheduler) NextRun(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entries[name]
	if !ok || !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}

func (s *MaintenanceScheduler) fire(job Job) (string, error) {
	id, err := s.queue.Enqueue(job.Task())
	if err != nil {
		s.log.Error().Err(err).Str("job", job.Name).Msg("failed to enqueue maintenance task")
		return "", err
	}
	s.log.Info().Str("job", job.Name).Str("task_id", id).Msg("maintenance task enqueued")
	return id, nil
}
