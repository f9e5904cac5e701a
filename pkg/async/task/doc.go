/*
Package task provides Task, a move-only, type-erased nullary callable.

A Task wraps any function or Callable together with its result type and is
exclusively owned by whoever holds the pointer to it. Ownership is handed
over explicitly:

	a := task.New(func() int { return 42 })
	b := a.Move() // a is now empty

	v, err := b.Invoke()  // 42, nil
	_, err = a.Invoke()   // errors.ErrEmptyTask

Tasks never share a callable: duplicating work means wrapping the
underlying function again. The scheduler queues Jobs (Task[Void]); use
NewJob for plain funcs or AsJob to re-wrap a result-bearing Task.

Plain functions are stored inline and called directly. Values implementing
Callable are boxed: the Task holds the Callable itself and calls its Call
method on every invocation. TargetType and Target give
access to the originally wrapped value for debugging.
*/
package task
