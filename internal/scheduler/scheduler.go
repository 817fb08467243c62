package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler errors
var (
	ErrRunning   = errors.New("scheduler is already running")
	ErrNoJobs    = errors.New("no jobs scheduled")
	errJobLocked = errors.New("cannot change jobs while scheduler is running")
)

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on cron expressions in UTC. A job never overlaps with
// a still-running previous invocation of itself.
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(logger *logrus.Logger, jobTimeout time.Duration) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Minute
	}
	entry := logger.WithField("component", "scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(entry))),
		),
		logger:          entry,
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      jobTimeout,
		gracefulTimeout: 30 * time.Second,
	}
}

// Schedule registers job under a standard cron expression or descriptor
func (s *Scheduler) Schedule(cronExpression string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return errJobLocked
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		s.runJob(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", job.Name(), err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":      job.Name(),
		"schedule": cronExpression,
	}).Info("Scheduled job")

	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	start := time.Now()
	entry := s.logger.WithField("job", job.Name())
	entry.Info("Starting scheduled job")

	if err := job.Run(ctx); err != nil {
		entry.WithError(err).Error("Scheduled job failed")
		return
	}
	entry.WithField("duration", time.Since(start).String()).Info("Scheduled job completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrRunning
	}
	if len(s.jobIDs) == 0 {
		return ErrNoJobs
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Infof("Scheduler started with %d jobs", len(s.jobIDs))

	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
