package game

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Loop serializes every session mutation onto a single goroutine: participant
// events, timer callbacks and status snapshots all run here, one at a time.
// This removes the need for locks around session state.
type Loop struct {
	events  chan func()
	stopped chan struct{}
	logger  zerolog.Logger
}

// NewLoop creates an event loop. Run must be called before posted events are
// executed.
func NewLoop(logger zerolog.Logger) *Loop {
	return &Loop{
		events:  make(chan func(), 256),
		stopped: make(chan struct{}),
		logger:  logger.With().Str("component", "game_loop").Logger(),
	}
}

// Run executes posted events until the context is canceled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			l.dispatch(fn)
		}
	}
}

// dispatch keeps the loop alive if a handler panics. Handlers that need to
// report faults to a connection add their own recovery on top.
func (l *Loop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Msg("event handler panicked")
		}
	}()
	fn()
}

// Post queues fn for execution on the loop goroutine. Events posted after the
// loop has stopped are discarded.
func (l *Loop) Post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.stopped:
	}
}

// Call runs fn on the loop goroutine and waits for it to finish. Used by the
// read-only query surface so that snapshots observe a consistent state.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		fn()
		close(done)
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return context.Canceled
	}
}

// Timer is a handle to a scheduled callback. The stopped flag is read and
// written only on the loop goroutine, which invalidates the timer atomically
// with whatever state transition supersedes it.
type Timer struct {
	stopped bool
}

// Stop cancels the timer. Must be called from the loop goroutine.
func (t *Timer) Stop() {
	t.stopped = true
}

// Schedule runs fn on the loop goroutine after d, unless the returned handle
// is stopped first. Must be called from the loop goroutine.
func (l *Loop) Schedule(d time.Duration, fn func()) *Timer {
	t := &Timer{}
	time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped {
				return
			}
			t.stopped = true
			fn()
		})
	})
	return t
}
