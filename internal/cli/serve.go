package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vnykmshr/taskflow/pkg/async/scheduler"
	"github.com/vnykmshr/taskflow/pkg/async/timer"
	"github.com/vnykmshr/taskflow/pkg/common/validation"
	"github.com/vnykmshr/taskflow/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a steady producer and expose scheduler metrics over HTTP",
	Long: `Every --interval a burst of --burst jobs is scheduled, and a cron entry
logs scheduler statistics. /metrics serves Prometheus metrics and /healthz
reports the scheduler state until the process is interrupted.`,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", ":9090", "HTTP listen address")
	flags.Duration("interval", time.Second, "time between bursts")
	flags.Int("burst", 100, "jobs scheduled per burst")
	flags.Duration("work", 2*time.Millisecond, "time each job sleeps")
	flags.String("cron", "*/15 * * * * *", "cron expression (seconds first) for the stats log")

	_ = viper.BindPFlag("serve.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("serve.interval", flags.Lookup("interval"))
	_ = viper.BindPFlag("serve.burst", flags.Lookup("burst"))
	_ = viper.BindPFlag("serve.work", flags.Lookup("work"))
	_ = viper.BindPFlag("serve.cron", flags.Lookup("cron"))

	rootCmd.AddCommand(serveCmd)
}

// serveOptions configures the long-running producer.
type serveOptions struct {
	Scheduler schedulerSettings
	Addr      string
	Interval  time.Duration
	Burst     int
	Work      time.Duration
	Cron      string
}

func runServe(cmd *cobra.Command, _ []string) error {
	opts := serveOptions{
		Scheduler: loadSchedulerSettings(),
		Addr:      viper.GetString("serve.addr"),
		Interval:  viper.GetDuration("serve.interval"),
		Burst:     viper.GetInt("serve.burst"),
		Work:      viper.GetDuration("serve.work"),
		Cron:      viper.GetString("serve.cron"),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, opts, newLogger())
}

// producer owns the scheduler, the timer feeding it and their metrics.
type producer struct {
	registry *prometheus.Registry
	sched    *scheduler.Scheduler
	timer    *timer.Timer
	logger   *slog.Logger
}

func newProducer(opts serveOptions, logger *slog.Logger) (*producer, error) {
	if err := validation.ValidatePositive("serve", "burst", opts.Burst); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration("serve", "interval", opts.Interval); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	mcfg := metrics.DefaultConfig()
	mcfg.Registry = reg
	m := mcfg.Build()

	s, err := scheduler.NewWithConfig(scheduler.Config{
		Name:         "serve",
		Workers:      opts.Scheduler.Workers,
		TryCycles:    opts.Scheduler.TryCycles,
		LockOSThread: opts.Scheduler.LockOSThread,
		Logger:       logger,
		Metrics:      m,
	})
	if err != nil {
		return nil, err
	}

	tm, err := timer.New(timer.Config{
		Name:      "serve",
		Scheduler: s,
		Logger:    logger,
		Metrics:   m,
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	p := &producer{registry: reg, sched: s, timer: tm, logger: logger}

	burst := func() {
		for i := 0; i < opts.Burst; i++ {
			if err := s.Schedule(func() { sleep(opts.Work) }); err != nil {
				logger.Warn("burst interrupted", "error", err)
				return
			}
		}
	}
	if err := tm.Every("burst-"+timer.NewID(), burst, opts.Interval); err != nil {
		p.close()
		return nil, fmt.Errorf("registering burst producer: %w", err)
	}
	if err := tm.Cron("stats", opts.Cron, p.logStats); err != nil {
		p.close()
		return nil, fmt.Errorf("registering stats entry: %w", err)
	}

	return p, nil
}

func (p *producer) logStats() {
	st := p.sched.Stats()
	p.logger.Info("scheduler stats",
		"scheduled", st.Scheduled,
		"executed", st.Executed,
		"stolen", st.Stolen,
		"fallbacks", st.Fallbacks,
		"failed", st.Failed,
		"pending", st.Pending)
}

// close stops the timer, then drains the scheduler.
func (p *producer) close() {
	<-p.timer.Stop()
	if err := p.sched.Close(); err != nil {
		p.logger.Error("closing scheduler", "error", err)
	}
}

func serve(ctx context.Context, opts serveOptions, logger *slog.Logger) error {
	p, err := newProducer(opts, logger)
	if err != nil {
		return err
	}
	defer p.close()

	if err := p.timer.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           newRouter(p.registry, p.sched, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
