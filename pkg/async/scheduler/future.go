package scheduler

import (
	"context"
	"runtime/debug"

	"github.com/vnykmshr/taskflow/pkg/async/task"
	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
)

// Future is the handle for the result of an Async call.
type Future[R any] struct {
	done  chan struct{}
	value R
	err   error
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// resolve must be called exactly once.
func (f *Future[R]) resolve(value R, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Get blocks until the task has finished and returns its result. A task
// that panicked yields an *errors.PanicError.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetContext is Get with a bound on the wait. Cancelling ctx abandons the
// wait only; the task itself still runs to completion.
func (f *Future[R]) GetContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed once the result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the result is available without blocking.
func (f *Future[R]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async schedules fn on s and returns a Future for its result. The error
// returned by fn, or a panic raised by it, is stored in the Future instead
// of reaching the worker. If s is shut down the Future is already resolved
// with errors.ErrClosed.
func Async[R any](s *Scheduler, fn func() (R, error)) *Future[R] {
	f := newFuture[R]()

	job := task.NewJob(func() {
		defer func() {
			if r := recover(); r != nil {
				var zero R
				f.resolve(zero, tferrors.NewPanicError(r, debug.Stack()))
			}
		}()

		if fn == nil {
			var zero R
			f.resolve(zero, tferrors.ErrEmptyTask)
			return
		}
		v, err := fn()
		f.resolve(v, err)
	})

	if err := s.ScheduleTask(job); err != nil {
		var zero R
		f.resolve(zero, err)
	}
	return f
}

// AsyncTask moves t onto s and returns a Future for its result. An empty
// task resolves with errors.ErrEmptyTask.
func AsyncTask[R any](s *Scheduler, t *task.Task[R]) *Future[R] {
	owned := t.Move()
	return Async(s, func() (R, error) {
		return owned.Invoke()
	})
}

// Async1 binds a to fn and schedules the call.
func Async1[A, R any](s *Scheduler, fn func(A) (R, error), a A) *Future[R] {
	if fn == nil {
		return Async[R](s, nil)
	}
	return Async(s, func() (R, error) {
		return fn(a)
	})
}

// Async2 binds a and b to fn and schedules the call.
func Async2[A, B, R any](s *Scheduler, fn func(A, B) (R, error), a A, b B) *Future[R] {
	if fn == nil {
		return Async[R](s, nil)
	}
	return Async(s, func() (R, error) {
		return fn(a, b)
	})
}
