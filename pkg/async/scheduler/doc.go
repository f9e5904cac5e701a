/*
Package scheduler provides a work-stealing task scheduler.

A Scheduler owns a fixed number of workers, each with its own queue.
Schedule places a job on the first queue, starting from a round-robin home
index, whose lock is free; when every queue is contended it falls back to a
blocking push on the home queue. Workers drain their own queue first and
steal from the others before blocking.

Basic usage:

	s, err := scheduler.New(4)
	if err != nil {
		return err
	}
	defer s.Close()

	s.Schedule(func() {
		// work
	})

Results are retrieved with Async and friends:

	f := scheduler.Async(s, func() (int, error) { return compute(), nil })
	v, err := f.Get()

A panic inside a scheduled job is recovered on the worker and reported to
Config.PanicHandler, or logged when no handler is set. Set
RepanicOnTaskPanic to terminate the process instead.

Default returns a lazily created process-wide scheduler sized to the number
of CPUs. Call CloseDefault before exit to drain it.
*/
package scheduler
