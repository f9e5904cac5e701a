// Package cli implements the taskflow command line.
package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vnykmshr/taskflow/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Work-stealing task scheduler toolkit",
	Long: `taskflow drives the work-stealing scheduler: generate load and report
how jobs spread across workers, or run a long-lived producer that exposes
Prometheus metrics.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is ./taskflow.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.Int("workers", 0, "number of scheduler workers (0 = one per CPU)")
	flags.Int("try-cycles", 0, "non-blocking probe rounds before a blocking push (0 = default)")
	flags.Bool("lock-os-thread", false, "pin every worker to its own OS thread")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("scheduler.workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("scheduler.try_cycles", flags.Lookup("try-cycles"))
	_ = viper.BindPFlag("scheduler.lock_os_thread", flags.Lookup("lock-os-thread"))
}

// SetDefaults registers the default value of every configuration key.
func SetDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("scheduler.workers", 0)
	viper.SetDefault("scheduler.try_cycles", 0)
	viper.SetDefault("scheduler.lock_os_thread", false)

	viper.SetDefault("run.tasks", 1000)
	viper.SetDefault("run.work", "1ms")
	viper.SetDefault("run.async", 0)
	viper.SetDefault("run.report", "text")
	viper.SetDefault("run.use_default", false)

	viper.SetDefault("serve.addr", ":9090")
	viper.SetDefault("serve.interval", "1s")
	viper.SetDefault("serve.burst", 100)
	viper.SetDefault("serve.work", "2ms")
	viper.SetDefault("serve.cron", "*/15 * * * * *")
}

func initConfig() {
	SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("taskflow")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/taskflow")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TASKFLOW")
	// TASKFLOW_SCHEDULER_WORKERS maps to scheduler.workers
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}

func newLogger() *slog.Logger {
	return logging.NewLogger(logging.ParseLevel(viper.GetString("log.level")), viper.GetString("log.format"))
}

// schedulerSettings reads the scheduler.* keys.
type schedulerSettings struct {
	Workers      int
	TryCycles    int
	LockOSThread bool
}

func loadSchedulerSettings() schedulerSettings {
	return schedulerSettings{
		Workers:      viper.GetInt("scheduler.workers"),
		TryCycles:    viper.GetInt("scheduler.try_cycles"),
		LockOSThread: viper.GetBool("scheduler.lock_os_thread"),
	}
}
