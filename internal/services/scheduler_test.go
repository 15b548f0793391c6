package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"library-loader/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   int
	err     error
	release chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context) (*models.RunSummary, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &models.RunSummary{RunID: "run"}, f.err
}

func (f *fakeRunner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, "@every 1h")

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Stop() })

	require.Eventually(t, func() bool { return s.Status().Runs == 1 }, time.Second, 10*time.Millisecond)

	status := s.Status()
	assert.True(t, status.IsRunning)
	assert.Equal(t, "@every 1h", status.Schedule)
	assert.NotEmpty(t, status.LastRun)
	assert.NotEmpty(t, status.NextRun)
	assert.Empty(t, status.LastError)
	require.NotNil(t, status.LastSummary)
	assert.Equal(t, "run", status.LastSummary.RunID)
}

func TestScheduler_Trigger(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	s := NewScheduler(runner, "@every 1h")

	require.ErrorIs(t, s.Trigger(), ErrNotScheduled)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Stop() })
	require.Eventually(t, func() bool { return s.Status().Runs == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Trigger())
	require.Eventually(t, func() bool { return s.Status().Runs == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "boom", s.Status().LastError)
}

func TestScheduler_TriggerWhileBusy(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	s := NewScheduler(runner, "@every 1h")

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return s.Status().Busy }, time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, s.Trigger(), ErrRunInProgress)

	close(runner.release)
	require.NoError(t, s.Stop())
	assert.Equal(t, 1, runner.Calls())
	assert.False(t, s.Status().IsRunning)
}

func TestScheduler_StartTwiceAndBadSchedule(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, "@every 1h")
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Stop(), ErrNotScheduled)

	bad := NewScheduler(&fakeRunner{}, "not a schedule")
	assert.Error(t, bad.Start(context.Background()))
}

func TestScheduler_RestartKeepsOneEntry(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, "@every 1h")

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return s.Status().Runs == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())
	assert.Empty(t, s.cron.Entries())

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Stop() })
	assert.Len(t, s.cron.Entries(), 1)
	require.Eventually(t, func() bool { return s.Status().Runs == 2 }, time.Second, 10*time.Millisecond)
}
