package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AddRejectsBadSpec(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	err := s.Add("broken", "every tuesday", time.Second, func(ctx context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Add("reminders", "0 20 * * *", time.Second, func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1, s.Len())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(nil)
	var runs atomic.Int32
	require.NoError(t, s.Add("tick", "@every 1s", time.Second, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("logged, not fatal")
	}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunAppliesTimeout(t *testing.T) {
	s := New(time.UTC)
	defer s.Stop()

	var deadline bool
	s.run("bounded", 10*time.Millisecond, func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})
	assert.True(t, deadline)
}

func TestScheduler_StopCancelsJobs(t *testing.T) {
	s := New(time.UTC)

	done := make(chan error, 1)
	started := make(chan struct{})
	go s.run("long", 0, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		done <- ctx.Err()
		return nil
	})

	<-started
	s.Stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled")
	}
}
