package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job represents a scheduled task
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules. A job that is still running when
// its next tick arrives is skipped for that tick.
type Scheduler struct {
	cron       *cron.Cron
	mu         sync.Mutex
	ctx        context.Context
	jobs       map[string]cron.EntryID
	timezone   *time.Location
	jobTimeout time.Duration
}

// New creates a new scheduler with the given timezone. Each job run is
// bounded by jobTimeout.
func New(timezone string, jobTimeout time.Duration) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}

	logger := cron.PrintfLogger(log.New(os.Stderr, "[cron] ", log.LstdFlags))
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	return &Scheduler{
		cron:       c,
		ctx:        context.Background(),
		jobs:       make(map[string]cron.EntryID),
		timezone:   loc,
		jobTimeout: jobTimeout,
	}, nil
}

// AddJob adds a job with a cron schedule
// schedule format: "*/15 * * * *" (every 15 minutes)
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(s.jobContext(), name, job); err != nil {
			log.Printf("[scheduler] Job %s failed: %v", name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	log.Printf("[scheduler] Added job: %s (schedule: %s)", name, schedule)

	return nil
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	log.Printf("[scheduler] Starting job: %s", name)
	start := time.Now()

	if err := job(ctx); err != nil {
		return err
	}
	log.Printf("[scheduler] Job %s completed in %v", name, time.Since(start))
	return nil
}

// Start begins running scheduled jobs. Job runs get contexts derived from
// ctx, so cancelling it aborts runs in progress.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	log.Printf("[scheduler] Starting scheduler (%s)", s.timezone)
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	log.Println("[scheduler] Stopping scheduler")
	return s.cron.Stop()
}

// RunNow immediately executes a job outside its schedule
func (s *Scheduler) RunNow(ctx context.Context, name string, job Job) error {
	return s.run(ctx, name, job)
}

// ListJobs returns info about scheduled jobs
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	infos := make([]JobInfo, 0, len(entries))

	for name, entryID := range s.jobs {
		for _, entry := range entries {
			if entry.ID == entryID {
				infos = append(infos, JobInfo{
					Name:    name,
					NextRun: entry.Next,
					LastRun: entry.Prev,
				})
				break
			}
		}
	}

	return infos
}

// Location returns the timezone schedules are evaluated in
func (s *Scheduler) Location() *time.Location {
	return s.timezone
}

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name    string
	NextRun time.Time
	LastRun time.Time
}
