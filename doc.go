/*
Package taskflow provides a work-stealing task scheduler for Go programs.

Tasks (pkg/async/task):
  - Task: move-only wrapper around a nullary callable
  - Job: a Task without result, the scheduler's unit of work

Scheduling (pkg/async):
  - taskqueue: blocking FIFO with non-blocking try variants
  - scheduler: per-worker queues with work stealing, futures, a process-wide default
  - timer: one-shot, interval and cron producers feeding a scheduler

Observability (pkg/metrics):
  - Prometheus collectors for scheduled, executed, stolen and failed jobs

Example usage:

	import (
		"github.com/vnykmshr/taskflow/pkg/async/scheduler"
	)

	s, _ := scheduler.New(4) // 4 workers, 4 queues
	defer s.Close()

	s.Schedule(func() { process(item) })

	f := scheduler.Async(s, func() (int, error) { return compute() })
	v, err := f.Get()
*/
package taskflow
