// Package scheduler runs the periodic jobs behind the service: weekly
// retraining and the regular score refresh. Jobs run with retry and
// per-job execution history.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler registers jobs against a cron runner
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	jobs    map[string]Job
	history map[string]*History
	mu      sync.RWMutex

	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)
}

// New creates a scheduler with second-granularity cron expressions
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		log:        log.With().Str("component", "scheduler").Logger(),
		jobs:       make(map[string]Job),
		history:    make(map[string]*History),
		maxRetries: 3,
		retryDelay: time.Minute,
		sleep:      time.Sleep,
	}
}

// AddJob registers a job under its cron schedule
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	}); err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = &History{}

	s.log.Info().Str("job", name).Str("schedule", job.Schedule()).Msg("job registered")
	return nil
}

// Start begins executing schedules
func (s *Scheduler) Start() {
	s.log.Info().Msg("scheduler starting")
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.log.Info().Msg("scheduler stopping")
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunJob triggers a registered job immediately, off-schedule
func (s *Scheduler) RunJob(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	go s.runJob(job)
	return nil
}

// RunJobAndWait triggers a registered job and blocks until it returns.
// CLI one-shot commands use this path.
func (s *Scheduler) RunJobAndWait(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.runJob(job)

	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.history[name].Latest(1)
	if len(results) == 1 && !results[0].Success {
		return fmt.Errorf("job %s failed: %s", name, results[0].Error)
	}
	return nil
}

// runJob executes a job with retry and records the outcome
func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	start := time.Now()

	s.log.Info().Str("job", name).Msg("job started")

	var lastErr error
	var success bool

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := s.attempt(job); err == nil {
			success = true
			break
		} else {
			lastErr = err
		}

		s.log.Warn().
			Str("job", name).
			Int("attempt", attempt+1).
			Err(lastErr).
			Msg("job attempt failed")

		if attempt < s.maxRetries {
			s.sleep(s.retryDelay)
		}
	}

	end := time.Now()
	result := Result{
		JobName:   name,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Success:   success,
	}
	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[name]; exists {
		history.add(result)
	}
	s.mu.Unlock()

	if success {
		s.log.Info().Str("job", name).Dur("duration", result.Duration).Msg("job completed")
	} else {
		s.log.Error().Str("job", name).Dur("duration", result.Duration).Err(lastErr).Msg("job failed after retries")
	}
}

// attempt runs one job execution, converting a panic into a failed
// attempt so one bad job cannot take the scheduler process down
func (s *Scheduler) attempt(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(context.Background())
}

// JobHistory returns the execution history for a job
func (s *Scheduler) JobHistory(name string) (*History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}
	return history, nil
}

// Jobs returns the registered job names
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Stats summarizes execution history per job
type Stats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
}

// JobStats returns per-job run statistics
func (s *Scheduler) JobStats() map[string]Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]Stats, len(s.history))
	for name, history := range s.history {
		failed := history.Failed()

		var lastRun *time.Time
		if latest := history.Latest(1); len(latest) == 1 {
			lastRun = &latest[0].StartTime
		}

		stats[name] = Stats{
			JobName:      name,
			Schedule:     s.jobs[name].Schedule(),
			TotalRuns:    len(history.Results),
			SuccessCount: len(history.Results) - len(failed),
			FailureCount: len(failed),
			SuccessRate:  history.SuccessRate(),
			LastRun:      lastRun,
		}
	}
	return stats
}
