package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vnykmshr/taskflow/pkg/async/scheduler"
	"github.com/vnykmshr/taskflow/pkg/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Schedule a batch of jobs and report how they were executed",
	Long: `Schedule --tasks jobs, each sleeping for --work, plus --async jobs whose
results are collected through futures. The scheduler is shut down once all
jobs are queued and the report shows how many jobs every worker executed.`,
	RunE: runRun,
}

func init() {
	flags := runCmd.Flags()
	flags.Int("tasks", 1000, "number of fire-and-forget jobs")
	flags.Duration("work", time.Millisecond, "time each job sleeps")
	flags.Int("async", 0, "number of additional jobs returning a result")
	flags.String("report", "text", "report format (text, yaml)")
	flags.Bool("use-default", false, "run on the process-wide default scheduler")

	_ = viper.BindPFlag("run.tasks", flags.Lookup("tasks"))
	_ = viper.BindPFlag("run.work", flags.Lookup("work"))
	_ = viper.BindPFlag("run.async", flags.Lookup("async"))
	_ = viper.BindPFlag("run.report", flags.Lookup("report"))
	_ = viper.BindPFlag("run.use_default", flags.Lookup("use-default"))

	rootCmd.AddCommand(runCmd)
}

// runOptions configures one load run.
type runOptions struct {
	Scheduler  schedulerSettings
	Tasks      int
	Work       time.Duration
	Async      int
	UseDefault bool
	Metrics    *metrics.Registry
}

func runRun(cmd *cobra.Command, _ []string) error {
	opts := runOptions{
		Scheduler:  loadSchedulerSettings(),
		Tasks:      viper.GetInt("run.tasks"),
		Work:       viper.GetDuration("run.work"),
		Async:      viper.GetInt("run.async"),
		UseDefault: viper.GetBool("run.use_default"),
	}

	report, err := runLoad(cmd.Context(), opts, newLogger())
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), viper.GetString("run.report"))
}

// runLoad schedules the configured jobs, shuts the scheduler down and
// returns the resulting report.
func runLoad(ctx context.Context, opts runOptions, logger *slog.Logger) (*Report, error) {
	if opts.Tasks < 0 || opts.Async < 0 {
		return nil, fmt.Errorf("task counts must not be negative (tasks=%d, async=%d)", opts.Tasks, opts.Async)
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	s, closeScheduler, err := openScheduler(opts, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("run started", "scheduler", s.Name(), "workers", s.Size(), "tasks", opts.Tasks, "async", opts.Async)
	start := time.Now()

	var executed atomic.Int64
	for i := 0; i < opts.Tasks; i++ {
		err := s.Schedule(func() {
			sleep(opts.Work)
			executed.Add(1)
		})
		if err != nil {
			_ = closeScheduler()
			return nil, fmt.Errorf("scheduling job %d: %w", i, err)
		}
	}

	futures := make([]*scheduler.Future[int], 0, opts.Async)
	for i := 0; i < opts.Async; i++ {
		futures = append(futures, scheduler.Async1(s, func(n int) (int, error) {
			sleep(opts.Work)
			return n, nil
		}, i))
	}

	var sum int64
	for _, f := range futures {
		v, err := f.GetContext(ctx)
		if err != nil {
			_ = closeScheduler()
			return nil, fmt.Errorf("collecting async result: %w", err)
		}
		sum += int64(v)
	}

	if err := closeScheduler(); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	report := newReport(runID, s.Stats())
	report.Scheduler = s.Name()
	report.Tasks = opts.Tasks
	report.Async = opts.Async
	report.AsyncSum = sum
	report.Elapsed = elapsed

	logger.Info("run finished", "executed", executed.Load(), "elapsed", elapsed)
	return report, nil
}

// openScheduler returns the scheduler for a run and the function that shuts
// it down.
func openScheduler(opts runOptions, logger *slog.Logger) (*scheduler.Scheduler, func() error, error) {
	if opts.UseDefault {
		return scheduler.Default(), scheduler.CloseDefault, nil
	}

	s, err := scheduler.NewWithConfig(scheduler.Config{
		Name:         "run",
		Workers:      opts.Scheduler.Workers,
		TryCycles:    opts.Scheduler.TryCycles,
		LockOSThread: opts.Scheduler.LockOSThread,
		Logger:       logger,
		Metrics:      opts.Metrics,
	})
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
