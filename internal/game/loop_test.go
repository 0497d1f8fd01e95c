package game

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningLoop(t *testing.T) *Loop {
	t.Helper()
	l := NewLoop(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l
}

func TestLoopExecutesEventsInOrder(t *testing.T) {
	l := newRunningLoop(t)

	var seen []int
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() { seen = append(seen, i) })
	}

	// Call runs on the same goroutine, so by the time it returns every
	// earlier post has executed.
	var got []int
	require.NoError(t, l.Call(context.Background(), func() { got = append(got, seen...) }))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestLoopSurvivesPanickingHandler(t *testing.T) {
	l := newRunningLoop(t)

	l.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, l.Call(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestCallHonorsContextCancellation(t *testing.T) {
	l := newRunningLoop(t)

	// Block the loop so the call cannot complete in time.
	release := make(chan struct{})
	l.Post(func() { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := l.Call(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallFailsAfterLoopStops(t *testing.T) {
	l := NewLoop(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	cancel()
	<-done

	err := l.Call(context.Background(), func() {})
	assert.Error(t, err)
}

func TestScheduleFiresOnLoop(t *testing.T) {
	l := newRunningLoop(t)

	fired := make(chan struct{})
	l.Post(func() {
		l.Schedule(5*time.Millisecond, func() { close(fired) })
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled callback never fired")
	}
}

func TestStoppedTimerNeverFires(t *testing.T) {
	l := newRunningLoop(t)

	fired := false
	l.Post(func() {
		timer := l.Schedule(5*time.Millisecond, func() { fired = true })
		timer.Stop()
	})

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, l.Call(context.Background(), func() {}))
	assert.False(t, fired)
}
