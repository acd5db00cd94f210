package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	overdue   atomic.Int32
	reminders atomic.Int32
}

func (c *countingSweeper) SweepOverdue(context.Context) (int, error) {
	c.overdue.Add(1)
	return 1, nil
}

func (c *countingSweeper) SendReminders(context.Context) (int, error) {
	c.reminders.Add(1)
	return 0, nil
}

func TestSchedulerRunsJobs(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(sweeper)
	require.NoError(t, s.Register("@every 1s", "@every 1s"))

	s.Start(context.Background())
	assert.Eventually(t, func() bool {
		return sweeper.overdue.Load() > 0 && sweeper.reminders.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&countingSweeper{})

	err := s.Register("every now and then", "@every 1h")
	assert.ErrorContains(t, err, "overdue")

	err = NewScheduler(&countingSweeper{}).Register("@every 1h", "61 * * * *")
	assert.ErrorContains(t, err, "reminder")
}

type purgeRecorder struct {
	calls atomic.Int32
}

func (p *purgeRecorder) PurgeExpired(time.Time) error {
	p.calls.Add(1)
	return nil
}

func TestCNPJCacheCleanerStopsOnCancel(t *testing.T) {
	purger := &purgeRecorder{}
	cleaner := NewCNPJCacheCleaner(purger)
	cleaner.cleanup()
	assert.Equal(t, int32(1), purger.calls.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleaner.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop")
	}
}
