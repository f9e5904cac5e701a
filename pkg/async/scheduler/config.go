package scheduler

import (
	"log/slog"
	"runtime"

	"github.com/vnykmshr/taskflow/pkg/common/validation"
	"github.com/vnykmshr/taskflow/pkg/metrics"
)

const (
	// DefaultTryCycles is how many times every queue is probed with a
	// non-blocking push before Schedule falls back to a blocking push on
	// the home queue.
	DefaultTryCycles = 1

	// DefaultName labels schedulers built without a name.
	DefaultName = "scheduler"

	module = "scheduler"
)

// PanicHandler is called on the worker goroutine when a scheduled task
// panics. workerID is -1 for stragglers run during shutdown.
type PanicHandler func(workerID int, recovered interface{}, stack []byte)

// Config holds configuration options for creating a Scheduler.
type Config struct {
	// Name labels logs and metrics. Defaults to DefaultName.
	Name string

	// Workers is the number of worker goroutines, and of queues.
	// Zero means runtime.NumCPU().
	Workers int

	// TryCycles is the number of non-blocking probe rounds over all
	// queues before a blocking push. Zero means DefaultTryCycles.
	TryCycles int

	// LockOSThread pins every worker goroutine to its own OS thread.
	LockOSThread bool

	// PanicHandler is called when a task panics, including when an empty
	// task is executed. If nil, panics are recovered and logged as errors.
	PanicHandler PanicHandler

	// RepanicOnTaskPanic re-raises a task panic after the handler ran,
	// terminating the process.
	RepanicOnTaskPanic bool

	// Logger receives lifecycle and failure logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry

	// OnWorkerStart is called on the worker goroutine before its loop starts.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called on the worker goroutine after its loop exits.
	OnWorkerStop func(workerID int)
}

// DefaultConfig returns a config with one worker per CPU.
func DefaultConfig() Config {
	return Config{
		Name:      DefaultName,
		Workers:   runtime.NumCPU(),
		TryCycles: DefaultTryCycles,
	}
}

// Validate reports invalid settings as errors.ValidationError.
func (c Config) Validate() error {
	if err := validation.ValidateNonNegative(module, "Workers", c.Workers); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative(module, "TryCycles", c.TryCycles); err != nil {
		return err
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TryCycles == 0 {
		c.TryCycles = DefaultTryCycles
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
