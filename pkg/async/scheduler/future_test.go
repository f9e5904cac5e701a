package scheduler

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/vnykmshr/taskflow/internal/testutil"
	"github.com/vnykmshr/taskflow/pkg/async/task"
	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
)

func TestAsyncValue(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 2})
	defer s.Close()

	f := Async(s, func() (int, error) { return 42, nil })

	v, err := f.Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 42)
	testutil.AssertEqual(t, f.Ready(), true)
}

func TestAsyncError(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 2})
	defer s.Close()

	errBoom := errors.New("boom")
	f := Async(s, func() (string, error) { return "", errBoom })

	_, err := f.Get()
	testutil.AssertErrorIs(t, err, errBoom)
}

func TestAsyncPanic(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 1})
	defer s.Close()

	f := Async(s, func() (int, error) { panic("exploded") })

	_, err := f.Get()
	testutil.AssertErrorIs(t, err, tferrors.ErrTaskPanicked)

	var perr *tferrors.PanicError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PanicError, got %T", err)
	}
	testutil.AssertEqual(t, perr.Value, interface{}("exploded"))

	// The panic was captured in the future, not reported by the worker.
	testutil.AssertEqual(t, s.Stats().Failed, int64(0))

	v, err := Async(s, func() (int, error) { return 1, nil }).Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 1)
}

func TestAsyncNilFunc(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 1})
	defer s.Close()

	_, err := Async[int](s, nil).Get()
	testutil.AssertErrorIs(t, err, tferrors.ErrEmptyTask)

	_, err = Async1[int, int](s, nil, 3).Get()
	testutil.AssertErrorIs(t, err, tferrors.ErrEmptyTask)
}

func TestAsyncOnClosedScheduler(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 1})
	testutil.AssertNoError(t, s.Close())

	f := Async(s, func() (int, error) { return 1, nil })
	testutil.AssertEqual(t, f.Ready(), true)

	_, err := f.Get()
	testutil.AssertErrorIs(t, err, tferrors.ErrClosed)
}

func TestAsyncBinding(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 2})
	defer s.Close()

	square := Async1(s, func(n int) (int, error) { return n * n, nil }, 9)
	join := Async2(s, func(prefix string, n int) (string, error) {
		return prefix + strconv.Itoa(n), nil
	}, "job-", 7)

	v, err := square.Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 81)

	str, err := join.Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, str, "job-7")
}

func TestAsyncTask(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 2})
	defer s.Close()

	tk := task.New(func() string { return "moved" })
	f := AsyncTask(s, tk)
	testutil.AssertEqual(t, tk.IsEmpty(), true)

	v, err := f.Get()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, "moved")

	_, err = AsyncTask(s, &task.Task[int]{}).Get()
	testutil.AssertErrorIs(t, err, tferrors.ErrEmptyTask)
}

func TestFutureGetContext(t *testing.T) {
	s := newTestScheduler(t, Config{Workers: 1})
	defer s.Close()

	release := make(chan struct{})
	f := Async(s, func() (int, error) {
		<-release
		return 5, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.GetContext(ctx)
	testutil.AssertErrorIs(t, err, context.DeadlineExceeded)
	testutil.AssertEqual(t, f.Ready(), false)

	close(release)

	ctx, cancel2 := testutil.WithTimeout(t)
	defer cancel2()
	v, err := f.GetContext(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 5)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done should be closed once the result is available")
	}
}
