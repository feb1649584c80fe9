package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/l1jgo/statecore/internal/platform"
)

// Task is the pending result of work scheduled onto the main thread.
// Resolved exactly once; safe to wait on from any goroutine.
//
// Waiting while holding the App lock (from inside an update) deadlocks
// when the task needs that lock to run.
type Task[R any] struct {
	done  chan struct{}
	once  sync.Once
	value R
	err   error
}

func newTask[R any]() *Task[R] {
	return &Task[R]{done: make(chan struct{})}
}

func (t *Task[R]) resolve(value R, err error) {
	t.once.Do(func() {
		t.value, t.err = value, err
		close(t.done)
	})
}

// Done is closed once the task has resolved.
func (t *Task[R]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task resolves or ctx ends.
func (t *Task[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking, or ErrTaskPending.
func (t *Task[R]) Result() (R, error) {
	select {
	case <-t.done:
		return t.value, t.err
	default:
		var zero R
		return zero, ErrTaskPending
	}
}

// SpawnOnMain runs fn on the main thread with the App lock re-acquired
// there, handing it the platform for the duration of the call. This is
// the only path to the platform from off the main thread. If fn cannot be
// dispatched the task resolves with that error.
func SpawnOnMain[R any](cx Context, fn func(p platform.Platform, cx *AppContext) (R, error)) *Task[R] {
	task, _ := spawnOnMain(cx.app(), fn)
	return task
}

// spawnOnMain also reports the dispatch failure, for callers holding
// resources that must be released when fn will never run.
func spawnOnMain[R any](a *AppContext, fn func(p platform.Platform, cx *AppContext) (R, error)) (*Task[R], error) {
	task := newTask[R]()
	app := a.this.Value()
	if app == nil {
		panic("app: context used after its App was collected")
	}
	err := a.platform.Read(func(p platform.Platform) {
		app.mu.Lock()
		defer app.mu.Unlock()
		var (
			value R
			err   error
		)
		update(app.cx, func() struct{} {
			value, err = fn(p, app.cx)
			return struct{}{}
		})
		task.resolve(value, err)
	})
	if err != nil {
		var zero R
		err = fmt.Errorf("app: spawn on main: %w", err)
		task.resolve(zero, err)
		return task, err
	}
	return task, nil
}
