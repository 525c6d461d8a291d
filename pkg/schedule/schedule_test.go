package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/taskpool/pkg/taskpool"
)

func countingTask(counter *int32) taskpool.TaskFunc {
	return func(ctx context.Context) (any, error) {
		atomic.AddInt32(counter, 1)
		return nil, nil
	}
}

func newTestScheduler(t *testing.T) (Scheduler, taskpool.Pool) {
	t.Helper()

	pool, err := taskpool.New(2, 20)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Shutdown(true)
		pool.Wait()
	})

	s := NewWithConfig(Config{
		Pool:         pool,
		TickInterval: 10 * time.Millisecond,
	})
	t.Cleanup(func() { <-s.Stop() })

	return s, pool
}

func TestScheduleValidation(t *testing.T) {
	s, _ := newTestScheduler(t)
	var n int32
	task := countingTask(&n)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"empty id", func() error { return s.Schedule("", task, time.Now()) }},
		{"nil task", func() error { return s.Schedule("id", nil, time.Now()) }},
		{"zero run time", func() error { return s.Schedule("id", task, time.Time{}) }},
		{"non-positive interval", func() error { return s.ScheduleRepeating("id", task, 0) }},
		{"empty cron expression", func() error { return s.ScheduleCron("id", "", task) }},
		{"invalid cron expression", func() error { return s.ScheduleCron("id", "not a cron", task) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.fn())
		})
	}
}

func TestScheduleDuplicateID(t *testing.T) {
	s, _ := newTestScheduler(t)
	var n int32
	task := countingTask(&n)

	require.NoError(t, s.ScheduleAfter("dup", task, time.Hour))
	require.Error(t, s.ScheduleAfter("dup", task, time.Hour))
	require.True(t, s.Cancel("dup"))
	require.NoError(t, s.ScheduleAfter("dup", task, time.Hour))
}

func TestScheduleAfterFires(t *testing.T) {
	s, _ := newTestScheduler(t)
	require.NoError(t, s.Start())

	var n int32
	require.NoError(t, s.ScheduleAfter("once", countingTask(&n), 20*time.Millisecond))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&n) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// One-time entries are removed after they fire.
	require.Eventually(t, func() bool {
		return len(s.List()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleRepeatingFires(t *testing.T) {
	s, _ := newTestScheduler(t)
	require.NoError(t, s.Start())

	var n int32
	require.NoError(t, s.ScheduleRepeating("tick", countingTask(&n), 15*time.Millisecond))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&n) >= 3
	}, 2*time.Second, 10*time.Millisecond)

	require.True(t, s.Cancel("tick"))
	require.Len(t, s.List(), 0)
}

func TestScheduleCronFires(t *testing.T) {
	s, _ := newTestScheduler(t)
	require.NoError(t, s.Start())

	var n int32
	// Six-field expression: every second.
	require.NoError(t, s.ScheduleCron("cron", "* * * * * *", countingTask(&n)))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&n) >= 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestListSortedByRunTime(t *testing.T) {
	s, _ := newTestScheduler(t)
	var n int32
	task := countingTask(&n)

	now := time.Now()
	require.NoError(t, s.Schedule("late", task, now.Add(3*time.Hour)))
	require.NoError(t, s.Schedule("early", task, now.Add(time.Hour)))
	require.NoError(t, s.Schedule("middle", task, now.Add(2*time.Hour)))

	entries := s.List()
	require.Len(t, entries, 3)
	require.Equal(t, "early", entries[0].ID)
	require.Equal(t, "middle", entries[1].ID)
	require.Equal(t, "late", entries[2].ID)
}

func TestCancelAll(t *testing.T) {
	s, _ := newTestScheduler(t)
	var n int32
	task := countingTask(&n)

	require.NoError(t, s.ScheduleAfter("a", task, time.Hour))
	require.NoError(t, s.ScheduleAfter("b", task, time.Hour))

	s.CancelAll()
	require.Len(t, s.List(), 0)
	require.False(t, s.Cancel("a"))
}

func TestStartTwice(t *testing.T) {
	s, _ := newTestScheduler(t)

	require.NoError(t, s.Start())
	require.Error(t, s.Start())
}

func TestStopOwnPool(t *testing.T) {
	s := New()
	require.NoError(t, s.Start())

	select {
	case <-s.Stop():
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not complete")
	}
}

func TestRejectedOneTimeEntryRetries(t *testing.T) {
	// A pool whose single worker is pinned and whose queue is full forces
	// TrySubmit to reject; the one-time entry must survive until a slot frees.
	pool, err := taskpool.New(1, 1)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Shutdown(true)
		pool.Wait()
	})

	release := make(chan struct{})
	_, err = pool.Submit(taskpool.TaskFunc(func(ctx context.Context) (any, error) {
		<-release
		return nil, nil
	}))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return pool.ActiveWorkers() == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err = pool.Submit(taskpool.TaskFunc(func(ctx context.Context) (any, error) {
		return nil, nil
	}))
	require.NoError(t, err) // fills the queue

	s := NewWithConfig(Config{Pool: pool, TickInterval: 10 * time.Millisecond})
	t.Cleanup(func() { <-s.Stop() })
	require.NoError(t, s.Start())

	var n int32
	require.NoError(t, s.ScheduleAfter("blocked", countingTask(&n), time.Millisecond))

	// Entry keeps being retried while the pool is full.
	time.Sleep(100 * time.Millisecond)
	require.Zero(t, atomic.LoadInt32(&n))

	close(release)
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&n) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
