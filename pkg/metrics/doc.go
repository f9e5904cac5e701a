// Package metrics provides Prometheus instrumentation for taskflow components.
//
// # Overview
//
// A Registry bundles the collectors used by the work-stealing scheduler and
// the timer producers. Components take a *Registry in their config; a nil
// registry disables instrumentation.
//
//	reg := prometheus.NewRegistry()
//	s, err := scheduler.NewWithConfig(scheduler.Config{
//		Name:    "render",
//		Metrics: metrics.NewRegistry(reg),
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
// ## Scheduler
//
//   - taskflow_scheduler_tasks_scheduled_total{placement="probe|fallback"}
//   - taskflow_scheduler_tasks_executed_total{source="local|stolen|blocking|drain"}
//   - taskflow_scheduler_tasks_failed_total{reason="panic|empty"}
//   - taskflow_scheduler_task_duration_seconds
//   - taskflow_scheduler_workers
//   - taskflow_scheduler_workers_busy
//   - taskflow_scheduler_queue_depth{queue="<index>"}
//
// ## Timer
//
//   - taskflow_timer_fires_total{kind="once|interval|cron"}
//   - taskflow_timer_entries
//
// DefaultRegistry registers its collectors with prometheus.DefaultRegisterer
// at package initialisation.
package metrics
