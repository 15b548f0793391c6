package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"library-loader/internal/models"

	"github.com/robfig/cron/v3"
)

var (
	ErrRunInProgress = errors.New("a load is already running")
	ErrNotScheduled  = errors.New("scheduler is not running")
)

// Runner performs one load.
type Runner interface {
	Run(ctx context.Context) (*models.RunSummary, error)
}

// Scheduler re-runs the loader on a cron schedule. Runs never overlap: a
// tick or trigger that arrives while a load is in progress is skipped.
type Scheduler struct {
	runner      Runner
	cron        *cron.Cron
	entryID     cron.EntryID
	schedule    string
	mutex       sync.RWMutex
	runMu       sync.Mutex
	ctx         context.Context
	isRunning   bool
	busy        bool
	runs        int
	lastRunTime time.Time
	lastError   string
	lastSummary *models.RunSummary
}

func NewScheduler(runner Runner, schedule string) *Scheduler {
	return &Scheduler{
		runner:   runner,
		cron:     cron.New(),
		schedule: schedule,
	}
}

// Start registers the cron job and runs one load immediately in the
// background. ctx bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler already running")
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		slog.Info("cron triggered", "time", time.Now().Format("2006-01-02 15:04:05"))
		s.tryRun()
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.ctx = ctx
	s.cron.Start()
	s.isRunning = true

	slog.Info("scheduler started", "schedule", s.schedule, "entry_id", entryID)

	go func() {
		slog.Info("running initial load")
		s.tryRun()
	}()

	return nil
}

// Stop halts the schedule and waits for a running load to finish.
func (s *Scheduler) Stop() error {
	s.mutex.Lock()
	if !s.isRunning {
		s.mutex.Unlock()
		return ErrNotScheduled
	}
	s.isRunning = false
	s.mutex.Unlock()

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)

	// Wait for a manual or initial run still in flight.
	s.runMu.Lock()
	s.runMu.Unlock()

	slog.Info("scheduler stopped")
	return nil
}

// Trigger starts a load in the background now.
func (s *Scheduler) Trigger() error {
	if !s.IsRunning() {
		return ErrNotScheduled
	}
	if !s.runMu.TryLock() {
		return ErrRunInProgress
	}
	go func() {
		defer s.runMu.Unlock()
		s.execute()
	}()
	return nil
}

func (s *Scheduler) tryRun() {
	if !s.IsRunning() {
		return
	}
	if !s.runMu.TryLock() {
		slog.Warn("previous load still running, skipping")
		return
	}
	defer s.runMu.Unlock()
	s.execute()
}

func (s *Scheduler) execute() {
	s.mutex.Lock()
	s.busy = true
	s.lastRunTime = time.Now()
	ctx := s.ctx
	s.mutex.Unlock()

	summary, err := s.runner.Run(ctx)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.busy = false
	s.runs++
	s.lastSummary = summary
	if err != nil {
		s.lastError = err.Error()
		slog.Error("scheduled load failed", "error", err)
	} else {
		s.lastError = ""
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.isRunning
}

func (s *Scheduler) Status() models.SchedulerStatus {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	status := models.SchedulerStatus{
		IsRunning: s.isRunning,
		Busy:      s.busy,
		Schedule:  s.schedule,
		Runs:      s.runs,
		LastError: s.lastError,
	}

	if s.lastSummary != nil {
		summary := *s.lastSummary
		status.LastSummary = &summary
	}
	if !s.lastRunTime.IsZero() {
		status.LastRun = s.lastRunTime.Format("2006-01-02 15:04:05")
	}
	if entries := s.cron.Entries(); s.isRunning && len(entries) > 0 {
		status.NextRun = entries[0].Next.Format("2006-01-02 15:04:05")
	}

	return status
}
