package scheduler

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/taskflow/pkg/async/task"
	"github.com/vnykmshr/taskflow/pkg/async/taskqueue"
	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/metrics"
)

// How a worker obtained the job it executes.
const (
	sourceLocal    = "local"
	sourceStolen   = "stolen"
	sourceBlocking = "blocking"
	sourceDrain    = "drain"
)

// jobQueue is the per-worker queue contract; *taskqueue.Queue implements it.
type jobQueue interface {
	Push(j *task.Job)
	TryPush(j *task.Job) bool
	Pop() (*task.Job, bool)
	TryPop() (*task.Job, bool)
	Close()
	Len() int
}

// Scheduler is a fixed pool of workers, each owning one queue. Workers
// take jobs from their own queue first and steal from the others when it
// is empty.
type Scheduler struct {
	config    Config
	name      string
	tryCycles uint64
	logger    *slog.Logger
	metrics   *metrics.Registry

	queues []jobQueue
	next   atomic.Uint64

	// admit orders schedule calls against the start of shutdown.
	admit        sync.RWMutex
	closing      atomic.Bool
	shutdownOnce sync.Once
	done         chan struct{}
	workerWg     sync.WaitGroup

	scheduled atomic.Int64
	fallbacks atomic.Int64
	executed  atomic.Int64
	stolen    atomic.Int64
	failed    atomic.Int64
	drained   atomic.Int64
	perWorker []atomic.Int64
}

// Stats is a snapshot of scheduler counters.
type Stats struct {
	Workers   int
	Scheduled int64
	Fallbacks int64
	Executed  int64
	Stolen    int64
	Failed    int64
	Drained   int64
	Pending   int
	PerWorker []int64
}

// New creates a scheduler with the given number of workers. Zero means one
// worker per CPU.
func New(workers int) (*Scheduler, error) {
	return NewWithConfig(Config{Workers: workers})
}

// NewWithConfig creates a scheduler and starts its workers.
func NewWithConfig(config Config) (*Scheduler, error) {
	return newScheduler(config, func(int) jobQueue { return taskqueue.New() })
}

func newScheduler(config Config, newQueue func(i int) jobQueue) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	config = config.withDefaults()

	s := &Scheduler{
		config:    config,
		name:      config.Name,
		tryCycles: uint64(config.TryCycles),
		logger:    config.Logger.With("component", "scheduler", "scheduler", config.Name),
		metrics:   config.Metrics,
		queues:    make([]jobQueue, config.Workers),
		done:      make(chan struct{}),
		perWorker: make([]atomic.Int64, config.Workers),
	}
	for i := range s.queues {
		s.queues[i] = newQueue(i)
	}

	s.workerWg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go s.run(i)
	}

	if s.metrics != nil {
		s.metrics.Workers.WithLabelValues(s.name).Set(float64(config.Workers))
	}
	s.logger.Debug("scheduler started", "workers", config.Workers, "try_cycles", config.TryCycles)

	return s, nil
}

// Schedule wraps fn in a job and schedules it. A nil fn is scheduled as an
// empty job, which fails on the worker that picks it up.
func (s *Scheduler) Schedule(fn func()) error {
	return s.ScheduleTask(task.NewJob(fn))
}

// ScheduleTask takes ownership of j and queues it for execution.
//
// The job goes to the first queue, starting from a round-robin home index,
// whose lock can be taken without waiting. If every probe is contended the
// job is pushed onto the home queue with a blocking push, so it is never
// dropped. ScheduleTask returns errors.ErrClosed once shutdown has started.
func (s *Scheduler) ScheduleTask(j *task.Job) error {
	s.admit.RLock()
	defer s.admit.RUnlock()

	if s.closing.Load() {
		return fmt.Errorf("cannot schedule task: scheduler %q: %w", s.name, tferrors.ErrClosed)
	}

	n := uint64(len(s.queues))
	home := (s.next.Add(1) - 1) % n

	for offset := uint64(0); offset < n*s.tryCycles; offset++ {
		if s.queues[(home+offset)%n].TryPush(j) {
			s.recordScheduled("probe")
			return nil
		}
	}

	s.queues[home].Push(j)
	s.fallbacks.Add(1)
	s.recordScheduled("fallback")
	s.logger.Debug("all queues contended, pushed to home queue", "queue", home)
	return nil
}

// Size returns the number of workers.
func (s *Scheduler) Size() int {
	return len(s.queues)
}

// Name returns the scheduler's label.
func (s *Scheduler) Name() string {
	return s.name
}

// Pending returns the number of queued jobs not yet picked up.
func (s *Scheduler) Pending() int {
	total := 0
	for _, q := range s.queues {
		total += q.Len()
	}
	return total
}

// Stats returns a snapshot of the scheduler counters and refreshes the
// queue depth gauges.
func (s *Scheduler) Stats() Stats {
	st := Stats{
		Workers:   len(s.queues),
		Scheduled: s.scheduled.Load(),
		Fallbacks: s.fallbacks.Load(),
		Executed:  s.executed.Load(),
		Stolen:    s.stolen.Load(),
		Failed:    s.failed.Load(),
		Drained:   s.drained.Load(),
		PerWorker: make([]int64, len(s.perWorker)),
	}
	for i := range s.perWorker {
		st.PerWorker[i] = s.perWorker[i].Load()
	}
	for i, q := range s.queues {
		depth := q.Len()
		st.Pending += depth
		if s.metrics != nil {
			s.metrics.QueueDepth.WithLabelValues(s.name, strconv.Itoa(i)).Set(float64(depth))
		}
	}
	return st
}

// Shutdown closes every queue and waits, in the background, for the
// workers to drain them. Jobs scheduled before Shutdown are all executed.
// The returned channel is closed once every worker has exited. Calling
// Shutdown again returns the same channel.
func (s *Scheduler) Shutdown() <-chan struct{} {
	s.shutdownOnce.Do(func() {
		s.admit.Lock()
		s.closing.Store(true)
		s.admit.Unlock()

		for _, q := range s.queues {
			q.Close()
		}

		go func() {
			s.workerWg.Wait()
			s.drainStragglers()
			if s.metrics != nil {
				s.metrics.Workers.WithLabelValues(s.name).Set(0)
			}
			s.logger.Debug("scheduler stopped", "executed", s.executed.Load())
			close(s.done)
		}()
	})

	return s.done
}

// Close shuts the scheduler down and blocks until all workers have exited.
// It must not be called from inside a scheduled task.
func (s *Scheduler) Close() error {
	<-s.Shutdown()
	return nil
}

// run is the main loop for worker id.
func (s *Scheduler) run(id int) {
	defer s.workerWg.Done()

	if s.config.LockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	if s.config.OnWorkerStart != nil {
		s.config.OnWorkerStart(id)
	}
	if s.config.OnWorkerStop != nil {
		defer s.config.OnWorkerStop(id)
	}

	n := len(s.queues)
	for {
		var job *task.Job
		source := ""

		// Own queue first, then steal from the others.
		for offset := 0; offset < n; offset++ {
			if j, ok := s.queues[(id+offset)%n].TryPop(); ok {
				job = j
				source = sourceLocal
				if offset > 0 {
					source = sourceStolen
				}
				break
			}
		}

		if job == nil {
			j, ok := s.queues[id].Pop()
			if !ok {
				return
			}
			job, source = j, sourceBlocking
		}

		s.execute(id, job, source)
	}
}

// drainStragglers runs jobs still queued after every worker exited. Workers
// only exit on a closed and empty queue, so this is a safety net for
// queues that accept pushes after Close.
func (s *Scheduler) drainStragglers() {
	for _, q := range s.queues {
		for {
			j, ok := q.Pop()
			if !ok {
				break
			}
			s.drained.Add(1)
			s.logger.Debug("running straggler after shutdown")
			s.execute(-1, j, sourceDrain)
		}
	}
}

// execute runs one job outside any scheduler lock.
func (s *Scheduler) execute(workerID int, job *task.Job, source string) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.WorkersBusy.WithLabelValues(s.name).Inc()
	}

	defer func() {
		r := recover()

		s.recordExecuted(workerID, source, time.Since(start))
		if r != nil {
			s.handlePanic(workerID, r, debug.Stack())
		}
	}()

	job.MustInvoke()
}

func (s *Scheduler) handlePanic(workerID int, recovered interface{}, stack []byte) {
	s.failed.Add(1)
	reason := "panic"
	if recovered == tferrors.ErrEmptyTask {
		reason = "empty"
	}
	if s.metrics != nil {
		s.metrics.TasksFailed.WithLabelValues(s.name, reason).Inc()
	}

	if s.config.PanicHandler != nil {
		s.config.PanicHandler(workerID, recovered, stack)
	} else {
		s.logger.Error("task panicked",
			"worker", workerID,
			"reason", reason,
			"panic", fmt.Sprint(recovered),
			"stack", string(stack))
	}

	if s.config.RepanicOnTaskPanic {
		panic(recovered)
	}
}

func (s *Scheduler) recordScheduled(placement string) {
	s.scheduled.Add(1)
	if s.metrics != nil {
		s.metrics.TasksScheduled.WithLabelValues(s.name, placement).Inc()
	}
}

func (s *Scheduler) recordExecuted(workerID int, source string, d time.Duration) {
	s.executed.Add(1)
	if source == sourceStolen {
		s.stolen.Add(1)
	}
	if workerID >= 0 {
		s.perWorker[workerID].Add(1)
	}
	if s.metrics != nil {
		s.metrics.WorkersBusy.WithLabelValues(s.name).Dec()
		s.metrics.TasksExecuted.WithLabelValues(s.name, source).Inc()
		s.metrics.TaskDuration.WithLabelValues(s.name).Observe(d.Seconds())
	}
}
