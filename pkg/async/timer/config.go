package timer

import (
	"log/slog"
	"time"

	"github.com/vnykmshr/taskflow/pkg/async/scheduler"
	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/common/validation"
	"github.com/vnykmshr/taskflow/pkg/metrics"
)

const (
	// DefaultTickInterval is how often due entries are collected.
	DefaultTickInterval = 50 * time.Millisecond

	// DefaultMaxEntries caps the number of registered entries.
	DefaultMaxEntries = 10000

	// DefaultName labels timers built without a name.
	DefaultName = "timer"

	// MaxIDLength is the longest accepted entry ID.
	MaxIDLength = 255

	module = "timer"
)

// Clock supplies the current time. testutil.MockClock satisfies it.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds timer configuration.
type Config struct {
	// Name labels logs and metrics. Defaults to DefaultName.
	Name string

	// Scheduler receives the jobs of due entries. When nil the timer
	// creates its own scheduler and shuts it down on Stop.
	Scheduler *scheduler.Scheduler

	// Location is used to evaluate cron expressions. Defaults to time.Local.
	Location *time.Location

	// TickInterval is how often due entries are collected.
	// Zero means DefaultTickInterval.
	TickInterval time.Duration

	// MaxEntries caps the number of registered entries.
	// Zero means DefaultMaxEntries.
	MaxEntries int

	// Clock overrides the time source.
	Clock Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry
}

// Validate reports invalid settings as errors.ValidationError.
func (c Config) Validate() error {
	if c.TickInterval < 0 {
		return tferrors.NewValidationError(module, "TickInterval", c.TickInterval, "must not be negative").
			WithHint("use 0 for the default of 50ms")
	}
	if err := validation.ValidateNonNegative(module, "MaxEntries", c.MaxEntries); err != nil {
		return err
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.TickInterval == 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.Clock == nil {
		c.Clock = realClock{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
