package task

import (
	"reflect"

	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/common/validation"
)

// Void is the result type of tasks that produce nothing.
type Void = struct{}

// Job is the unit the scheduler queues and executes.
type Job = Task[Void]

// Callable is implemented by any value that can be wrapped in a Task
// besides a plain function.
type Callable[R any] interface {
	Call() R
}

type storage uint8

const (
	storageEmpty storage = iota
	storageInline
	storageBoxed
)

func (s storage) String() string {
	switch s {
	case storageInline:
		return "inline"
	case storageBoxed:
		return "boxed"
	default:
		return "empty"
	}
}

// noCopy lets `go vet` (copylocks) flag Task values copied after first use.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Task is a move-only, type-erased nullary callable returning R.
//
// A Task is either empty or owns exactly one callable. Tasks are handled
// through pointers; ownership changes hands with Move or MoveFrom, which
// leave the source empty. The zero value is an empty Task.
type Task[R any] struct {
	_ noCopy

	kind   storage
	invoke func(target any) R
	target any
}

// Per-variant invokers. Each is a plain generic function, so selecting one
// costs no allocation.
func invokeInline[R any](target any) R { return target.(func() R)() }

func invokeBoxed[R any](target any) R { return target.(Callable[R]).Call() }

func invokeFunc(target any) Void {
	target.(func())()
	return Void{}
}

// New wraps fn. A nil fn yields an empty Task.
//
// Plain functions are stored inline: the Task keeps the function value
// itself and calls it directly.
func New[R any](fn func() R) *Task[R] {
	if fn == nil {
		return &Task[R]{}
	}
	return &Task[R]{kind: storageInline, invoke: invokeInline[R], target: fn}
}

// FromCallable wraps c. A nil interface or a nil pointer, func, map,
// slice or channel behind it yields an empty Task.
//
// Callables are boxed: the Task keeps the Callable interface value and
// dispatches every call through its Call method, so a pointer receiver sees
// the state changes of every invocation.
func FromCallable[R any](c Callable[R]) *Task[R] {
	if validation.IsNil(c) {
		return &Task[R]{}
	}
	return &Task[R]{kind: storageBoxed, invoke: invokeBoxed[R], target: c}
}

// NewJob wraps a function without result. A nil fn yields an empty Job.
func NewJob(fn func()) *Job {
	if fn == nil {
		return &Job{}
	}
	return &Job{kind: storageInline, invoke: invokeFunc, target: fn}
}

// AsJob moves t into a Job that discards the result. t is left empty and
// the Job reports the original target.
func AsJob[R any](t *Task[R]) *Job {
	if t.IsEmpty() {
		return &Job{}
	}
	invoke, kind, target := t.invoke, t.kind, t.target
	t.Reset()
	return &Job{
		kind: kind,
		invoke: func(target any) Void {
			invoke(target)
			return Void{}
		},
		target: target,
	}
}

// Move transfers the callable into a new Task and leaves t empty.
func (t *Task[R]) Move() *Task[R] {
	if t == nil {
		return &Task[R]{}
	}
	moved := &Task[R]{kind: t.kind, invoke: t.invoke, target: t.target}
	t.Reset()
	return moved
}

// MoveFrom releases the callable held by t, then takes ownership of the
// callable held by src, leaving src empty.
func (t *Task[R]) MoveFrom(src *Task[R]) {
	if t == src {
		return
	}
	t.Reset()
	if src == nil {
		return
	}
	t.kind, t.invoke, t.target = src.kind, src.invoke, src.target
	src.Reset()
}

// Reset releases the held callable. The Task is empty afterwards.
func (t *Task[R]) Reset() {
	t.kind = storageEmpty
	t.invoke = nil
	t.target = nil
}

// Invoke calls the wrapped callable. It returns errors.ErrEmptyTask if the
// Task is empty.
func (t *Task[R]) Invoke() (R, error) {
	if t.IsEmpty() {
		var zero R
		return zero, tferrors.ErrEmptyTask
	}
	return t.invoke(t.target), nil
}

// MustInvoke calls the wrapped callable and panics with errors.ErrEmptyTask
// if the Task is empty.
func (t *Task[R]) MustInvoke() R {
	if t.IsEmpty() {
		panic(tferrors.ErrEmptyTask)
	}
	return t.invoke(t.target)
}

// IsEmpty reports whether t holds no callable. A nil *Task is empty.
func (t *Task[R]) IsEmpty() bool {
	return t == nil || t.invoke == nil
}

// Inline reports whether the callable is stored as a plain function value
// rather than a boxed Callable.
func (t *Task[R]) Inline() bool {
	return !t.IsEmpty() && t.kind == storageInline
}

// Storage names the storage variant: "empty", "inline" or "boxed".
func (t *Task[R]) Storage() string {
	if t.IsEmpty() {
		return storageEmpty.String()
	}
	return t.kind.String()
}

// TargetType returns the dynamic type of the wrapped callable, or nil if
// the Task is empty.
func (t *Task[R]) TargetType() reflect.Type {
	if t.IsEmpty() {
		return nil
	}
	return reflect.TypeOf(t.target)
}

// Target returns the wrapped callable if its dynamic type is exactly T.
func Target[T any, R any](t *Task[R]) (T, bool) {
	var zero T
	if t.IsEmpty() || reflect.TypeOf(t.target) != reflect.TypeOf((*T)(nil)).Elem() {
		return zero, false
	}
	v, ok := t.target.(T)
	return v, ok
}
