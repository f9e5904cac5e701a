package scheduler

import (
	"sync"

	"github.com/vnykmshr/taskflow/pkg/metrics"
)

// DefaultSchedulerName labels the process-wide scheduler.
const DefaultSchedulerName = "default"

var (
	defaultMu        sync.Mutex
	defaultScheduler *Scheduler
)

// Default returns the process-wide scheduler, creating it with one worker
// per CPU on first use. It reports to metrics.DefaultRegistry under the
// scheduler_name "default". Its lifetime is the process; once CloseDefault has
// run, Default keeps returning the closed scheduler, which rejects new work.
//
// Prefer passing a *Scheduler explicitly; Default serves producers that do
// not own one.
func Default() *Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultScheduler == nil {
		s, err := NewWithConfig(Config{
			Name:    DefaultSchedulerName,
			Metrics: metrics.DefaultRegistry,
		})
		if err != nil {
			// A zero Config always validates.
			panic(err)
		}
		defaultScheduler = s
	}
	return defaultScheduler
}

// CloseDefault shuts the process-wide scheduler down and waits for its
// workers, if it was ever created. Call it once before the process exits,
// typically deferred in main.
func CloseDefault() error {
	defaultMu.Lock()
	s := defaultScheduler
	defaultMu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}
