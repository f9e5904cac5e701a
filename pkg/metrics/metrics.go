// Package metrics provides Prometheus instrumentation for taskflow components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for taskflow components.
type Registry struct {
	// Scheduler Metrics
	TasksScheduled *prometheus.CounterVec
	TasksExecuted  *prometheus.CounterVec
	TasksFailed    *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	Workers        *prometheus.GaugeVec
	WorkersBusy    *prometheus.GaugeVec
	QueueDepth     *prometheus.GaugeVec

	// Timer Metrics
	TimerFires   *prometheus.CounterVec
	TimerEntries *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by taskflow components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return New(Config{Registry: reg})
}

// New creates a registry from cfg. Namespace defaults to "taskflow" and
// Labels become constant labels on every collector.
func New(cfg Config) *Registry {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Registry{
		TasksScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "tasks_scheduled_total",
				Help:        "Total number of tasks scheduled, by placement path",
				ConstLabels: cfg.Labels,
			},
			[]string{"scheduler_name", "placement"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "tasks_executed_total",
				Help:        "Total number of tasks executed, by how the worker obtained them",
				ConstLabels: cfg.Labels,
			},
			[]string{"scheduler_name", "source"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "tasks_failed_total",
				Help:        "Total number of tasks that panicked or were empty",
				ConstLabels: cfg.Labels,
			},
			[]string{"scheduler_name", "reason"},
		),

		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "task_duration_seconds",
				Help:        "Time spent executing tasks",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: cfg.Labels,
			},
			[]string{"scheduler_name"},
		),

		Workers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "workers",
				Help:        "Number of running worker goroutines",
				ConstLabels: cfg.Labels,
			},
			[]string{"scheduler_name"},
		),

		WorkersBusy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "workers_busy",
				Help:        "Number of workers currently executing a task",
				ConstLabels: cfg.Labels,
			},
			[]string{"scheduler_name"},
		),

		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "scheduler",
				Name:        "queue_depth",
				Help:        "Number of tasks waiting in a worker queue",
				ConstLabels: cfg.Labels,
			},
			[]string{"scheduler_name", "queue"},
		),

		TimerFires: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "timer",
				Name:        "fires_total",
				Help:        "Total number of timer entries handed to a scheduler",
				ConstLabels: cfg.Labels,
			},
			[]string{"timer_name", "kind"},
		),

		TimerEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "timer",
				Name:        "entries",
				Help:        "Number of registered timer entries",
				ConstLabels: cfg.Labels,
			},
			[]string{"timer_name"},
		),
	}
}
