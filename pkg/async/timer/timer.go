package timer

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/taskflow/pkg/async/scheduler"
	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/common/validation"
	"github.com/vnykmshr/taskflow/pkg/metrics"
)

// ErrTooManyEntries is returned when registering past Config.MaxEntries.
var ErrTooManyEntries = errors.New("maximum number of timer entries reached")

// Kind tells how an entry is re-armed after firing.
type Kind string

const (
	KindOnce     Kind = "once"
	KindInterval Kind = "interval"
	KindCron     Kind = "cron"
)

// Entry describes a registered entry.
type Entry struct {
	ID       string
	Kind     Kind
	NextRun  time.Time
	Interval time.Duration // interval entries only
	Spec     string        // cron entries only
	Created  time.Time
	Runs     int64
}

type entry struct {
	id       string
	kind     Kind
	fn       func()
	nextRun  time.Time
	interval time.Duration
	spec     string
	schedule cron.Schedule
	created  time.Time
	runs     int64
}

// Timer turns time-based triggers into jobs on a Scheduler.
type Timer struct {
	name         string
	sched        *scheduler.Scheduler
	ownScheduler bool
	location     *time.Location
	tickInterval time.Duration
	maxEntries   int
	clock        Clock
	logger       *slog.Logger
	metrics      *metrics.Registry
	parser       cron.Parser

	mu      sync.Mutex
	entries map[string]*entry
	running bool
	stopped bool
	done    chan struct{}
	exited  chan struct{}
}

// NewID returns a random entry ID.
func NewID() string {
	return uuid.NewString()
}

// New creates a stopped timer. Call Start to begin firing entries.
func New(config Config) (*Timer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("creating timer: %w", err)
	}
	config = config.withDefaults()

	sched := config.Scheduler
	own := false
	if sched == nil {
		var err error
		sched, err = scheduler.NewWithConfig(scheduler.Config{
			Name:    config.Name,
			Logger:  config.Logger,
			Metrics: config.Metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("creating timer scheduler: %w", err)
		}
		own = true
	}

	return &Timer{
		name:         config.Name,
		sched:        sched,
		ownScheduler: own,
		location:     config.Location,
		tickInterval: config.TickInterval,
		maxEntries:   config.MaxEntries,
		clock:        config.Clock,
		logger:       config.Logger.With("component", "timer", "timer", config.Name),
		metrics:      config.Metrics,
		parser: cron.NewParser(
			cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		),
		entries: make(map[string]*entry),
	}, nil
}

// After fires fn once, delay from now.
func (t *Timer) After(id string, fn func(), delay time.Duration) error {
	return t.At(id, fn, t.clock.Now().Add(delay))
}

// At fires fn once at runAt. A time in the past fires on the next tick.
func (t *Timer) At(id string, fn func(), runAt time.Time) error {
	if err := validateEntry(id, fn); err != nil {
		return err
	}
	if runAt.IsZero() {
		return tferrors.NewValidationError(module, "runAt", runAt, "must not be zero")
	}
	return t.add(&entry{id: id, kind: KindOnce, fn: fn, nextRun: runAt})
}

// Every fires fn every interval, starting one interval from now.
func (t *Timer) Every(id string, fn func(), interval time.Duration) error {
	if err := validateEntry(id, fn); err != nil {
		return err
	}
	if err := validation.ValidatePositiveDuration(module, "interval", interval); err != nil {
		return err
	}
	return t.add(&entry{
		id:       id,
		kind:     KindInterval,
		fn:       fn,
		nextRun:  t.clock.Now().Add(interval),
		interval: interval,
	})
}

// Cron fires fn on a cron schedule. Expressions have six fields, seconds
// first ("*/10 * * * * *"); descriptors such as "@hourly" are accepted.
func (t *Timer) Cron(id string, expr string, fn func()) error {
	if err := validateEntry(id, fn); err != nil {
		return err
	}
	if err := validation.ValidateNotEmpty(module, "expr", expr); err != nil {
		return err
	}
	schedule, err := t.parser.Parse(expr)
	if err != nil {
		return tferrors.NewValidationError(module, "expr", expr, err.Error()).
			WithHint("use six fields with seconds first, e.g. \"0 */5 * * * *\"")
	}
	return t.add(&entry{
		id:       id,
		kind:     KindCron,
		fn:       fn,
		nextRun:  schedule.Next(t.clock.Now().In(t.location)),
		spec:     expr,
		schedule: schedule,
	})
}

func validateEntry(id string, fn func()) error {
	if err := validation.ValidateNotEmpty(module, "id", id); err != nil {
		return err
	}
	if err := validation.ValidateMaxLength(module, "id", id, MaxIDLength); err != nil {
		return err
	}
	return validation.ValidateNotNil(module, "fn", fn)
}

func (t *Timer) add(e *entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[e.id]; exists {
		return tferrors.NewValidationError(module, "id", e.id, "already registered").
			WithHint("use a different ID or cancel the existing entry first")
	}
	if len(t.entries) >= t.maxEntries {
		return fmt.Errorf("cannot add entry %q: %w (%d)", e.id, ErrTooManyEntries, t.maxEntries)
	}

	e.created = t.clock.Now()
	t.entries[e.id] = e
	t.updateEntriesGauge()
	t.logger.Debug("entry added", "id", e.id, "kind", e.kind, "next_run", e.nextRun)
	return nil
}

// Cancel removes the entry with the given ID and reports whether it existed.
// A job already handed to the scheduler still runs.
func (t *Timer) Cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[id]; !exists {
		return false
	}
	delete(t.entries, id)
	t.updateEntriesGauge()
	return true
}

// CancelAll removes every entry.
func (t *Timer) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = make(map[string]*entry)
	t.updateEntriesGauge()
}

// List returns the registered entries ordered by next run time.
func (t *Timer) List() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	list := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		list = append(list, Entry{
			ID:       e.id,
			Kind:     e.kind,
			NextRun:  e.nextRun,
			Interval: e.interval,
			Spec:     e.spec,
			Created:  e.created,
			Runs:     e.runs,
		})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].NextRun.Equal(list[j].NextRun) {
			return list[i].ID < list[j].ID
		}
		return list[i].NextRun.Before(list[j].NextRun)
	})
	return list
}

// Scheduler returns the scheduler due jobs are posted to.
func (t *Timer) Scheduler() *scheduler.Scheduler {
	return t.sched
}

// Start launches the tick loop. A stopped timer cannot be restarted.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return fmt.Errorf("cannot start timer %q: %w", t.name, tferrors.ErrClosed)
	}
	if t.running {
		return fmt.Errorf("timer %q already running, call Stop() first", t.name)
	}

	t.running = true
	t.done = make(chan struct{})
	t.exited = make(chan struct{})
	go t.run(t.done, t.exited)

	t.logger.Debug("timer started", "tick", t.tickInterval)
	return nil
}

// Stop ends the tick loop. The returned channel is closed once the loop has
// exited and, if the timer created its own scheduler, that scheduler has
// finished every job already posted.
func (t *Timer) Stop() <-chan struct{} {
	t.mu.Lock()
	exited := t.exited
	if t.running {
		t.running = false
		close(t.done)
	}
	t.stopped = true
	t.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if exited != nil {
			<-exited
		}
		if t.ownScheduler {
			<-t.sched.Shutdown()
		}
		t.logger.Debug("timer stopped")
	}()
	return stopped
}

func (t *Timer) run(done <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)

	ticker := time.NewTicker(t.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.fire(t.clock.Now())
		}
	}
}

// fire posts every entry due at now and re-arms the repeating ones.
func (t *Timer) fire(now time.Time) int {
	t.mu.Lock()
	if len(t.entries) == 0 {
		t.mu.Unlock()
		return 0
	}

	type dueJob struct {
		id   string
		kind Kind
		fn   func()
	}
	var due []dueJob

	for id, e := range t.entries {
		if now.Before(e.nextRun) {
			continue
		}
		due = append(due, dueJob{id: id, kind: e.kind, fn: e.fn})
		e.runs++

		switch e.kind {
		case KindInterval:
			e.nextRun = now.Add(e.interval)
		case KindCron:
			e.nextRun = e.schedule.Next(now.In(t.location))
		default:
			delete(t.entries, id)
		}
	}
	if len(due) > 0 {
		t.updateEntriesGauge()
	}
	t.mu.Unlock()

	posted := 0
	for _, d := range due {
		if err := t.sched.Schedule(d.fn); err != nil {
			t.logger.Warn("could not post due entry", "id", d.id, "error", err)
			continue
		}
		posted++
		if t.metrics != nil {
			t.metrics.TimerFires.WithLabelValues(t.name, string(d.kind)).Inc()
		}
	}
	return posted
}

// updateEntriesGauge must be called with t.mu held.
func (t *Timer) updateEntriesGauge() {
	if t.metrics != nil {
		t.metrics.TimerEntries.WithLabelValues(t.name).Set(float64(len(t.entries)))
	}
}
