package task

import (
	"reflect"
	"testing"

	"github.com/vnykmshr/taskflow/internal/testutil"
	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
)

type counter struct {
	calls int
}

func (c *counter) Call() int {
	c.calls++
	return c.calls
}

type constant int

func (c constant) Call() int { return int(c) }

func TestEmptyTask(t *testing.T) {
	tests := []struct {
		name string
		task *Task[int]
	}{
		{"zero value", &Task[int]{}},
		{"nil func", New[int](nil)},
		{"nil callable", FromCallable[int](nil)},
		{"typed nil callable", FromCallable[int]((*counter)(nil))},
		{"nil pointer", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, tt.task.IsEmpty(), true)
			testutil.AssertEqual(t, tt.task.Storage(), "empty")
			testutil.AssertEqual(t, tt.task.TargetType(), nil)

			_, err := tt.task.Invoke()
			testutil.AssertErrorIs(t, err, tferrors.ErrEmptyTask)
		})
	}
}

func TestInvoke(t *testing.T) {
	tk := New(func() int { return 42 })

	v, err := tk.Invoke()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 42)
	testutil.AssertEqual(t, tk.Inline(), true)

	// Invoking does not consume the task.
	v, err = tk.Invoke()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 42)
}

func TestMustInvokePanicsOnEmpty(t *testing.T) {
	defer func() {
		r := recover()
		if r != tferrors.ErrEmptyTask {
			t.Fatalf("recovered %v, want ErrEmptyTask", r)
		}
	}()

	var tk Task[string]
	tk.MustInvoke()
	t.Fatal("MustInvoke should panic")
}

func TestMove(t *testing.T) {
	calls := 0
	a := NewJob(func() { calls++ })

	b := a.Move()

	testutil.AssertEqual(t, a.IsEmpty(), true)
	_, err := a.Invoke()
	testutil.AssertErrorIs(t, err, tferrors.ErrEmptyTask)

	_, err = b.Invoke()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, calls, 1)
}

func TestMoveFrom(t *testing.T) {
	dst := New(func() string { return "old" })
	src := New(func() string { return "new" })

	dst.MoveFrom(src)

	testutil.AssertEqual(t, src.IsEmpty(), true)
	v, err := dst.Invoke()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, "new")

	dst.MoveFrom(dst)
	testutil.AssertEqual(t, dst.IsEmpty(), false)

	dst.MoveFrom(nil)
	testutil.AssertEqual(t, dst.IsEmpty(), true)
}

func TestMoveEmpty(t *testing.T) {
	var nilTask *Task[int]
	moved := nilTask.Move()
	testutil.AssertEqual(t, moved.IsEmpty(), true)

	empty := &Task[int]{}
	testutil.AssertEqual(t, empty.Move().IsEmpty(), true)
}

func TestCallableStorage(t *testing.T) {
	c := &counter{}
	tk := FromCallable[int](c)

	testutil.AssertEqual(t, tk.Storage(), "boxed")
	testutil.AssertEqual(t, tk.Inline(), false)

	v, err := tk.Invoke()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 1)
	testutil.AssertEqual(t, c.calls, 1)

	moved := tk.Move()
	v, err = moved.Invoke()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 2)
}

func TestBoxedKeepsCallable(t *testing.T) {
	c := &counter{}
	tk := FromCallable[int](c)

	for want := 1; want <= 3; want++ {
		v := tk.MustInvoke()
		testutil.AssertEqual(t, v, want)
	}

	// The stored value is the Callable itself, not a copy or a bound method.
	got, ok := Target[*counter](tk)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, got, c)
	testutil.AssertEqual(t, got.calls, 3)

	got.calls = 10
	testutil.AssertEqual(t, tk.MustInvoke(), 11)

	// Value receivers are stored by value and dispatched through Call.
	k := FromCallable[int](constant(5))
	stored, ok := Target[constant](k)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, stored, constant(5))
	testutil.AssertEqual(t, k.MustInvoke(), 5)
}

func TestInlineKeepsFunction(t *testing.T) {
	calls := 0
	tk := New(func() int {
		calls++
		return calls
	})
	testutil.AssertEqual(t, tk.Storage(), "inline")
	testutil.AssertEqual(t, tk.Inline(), true)
	testutil.AssertEqual(t, tk.MustInvoke(), 1)

	fn, ok := Target[func() int](tk)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, fn(), 2)
	testutil.AssertEqual(t, tk.MustInvoke(), 3)

	_, ok = Target[Callable[int]](tk)
	testutil.AssertEqual(t, ok, false)
}

func TestTargetType(t *testing.T) {
	fn := func() int { return 1 }

	testutil.AssertEqual(t, New(fn).TargetType(), reflect.TypeOf(fn))
	testutil.AssertEqual(t, FromCallable[int](constant(7)).TargetType(), reflect.TypeOf(constant(0)))
	testutil.AssertEqual(t, NewJob(func() {}).TargetType(), reflect.TypeOf(func() {}))
}

func TestTarget(t *testing.T) {
	c := &counter{}
	tk := FromCallable[int](c)

	got, ok := Target[*counter](tk)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, got, c)

	_, ok = Target[constant](tk)
	testutil.AssertEqual(t, ok, false)

	// Interface types do not match the stored dynamic type.
	_, ok = Target[Callable[int]](tk)
	testutil.AssertEqual(t, ok, false)

	fnTask := New(func() int { return 3 })
	fn, ok := Target[func() int](fnTask)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, fn(), 3)

	_, ok = Target[func() int](&Task[int]{})
	testutil.AssertEqual(t, ok, false)
}

func TestAsJob(t *testing.T) {
	c := &counter{}
	tk := FromCallable[int](c)

	job := AsJob(tk)

	testutil.AssertEqual(t, tk.IsEmpty(), true)
	testutil.AssertEqual(t, job.Storage(), "boxed")
	testutil.AssertEqual(t, job.TargetType(), reflect.TypeOf(c))

	_, err := job.Invoke()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, c.calls, 1)

	testutil.AssertEqual(t, AsJob(&Task[int]{}).IsEmpty(), true)
}

func TestReset(t *testing.T) {
	tk := NewJob(func() {})
	tk.Reset()
	testutil.AssertEqual(t, tk.IsEmpty(), true)
}

func BenchmarkInvokeInline(b *testing.B) {
	tk := New(func() int { return 1 })
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = tk.Invoke()
	}
}

func BenchmarkNewAndMove(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tk := NewJob(func() {})
		_ = tk.Move()
	}
}
