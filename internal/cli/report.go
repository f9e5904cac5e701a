package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/vnykmshr/taskflow/pkg/async/scheduler"
)

// Report summarizes one load run.
type Report struct {
	RunID     string        `yaml:"run_id"`
	Scheduler string        `yaml:"scheduler"`
	Workers   int           `yaml:"workers"`
	Tasks     int           `yaml:"tasks"`
	Async     int           `yaml:"async"`
	AsyncSum  int64         `yaml:"async_sum"`
	Elapsed   time.Duration `yaml:"elapsed"`
	Scheduled int64         `yaml:"scheduled"`
	Executed  int64         `yaml:"executed"`
	Stolen    int64         `yaml:"stolen"`
	Fallbacks int64         `yaml:"fallbacks"`
	Failed    int64         `yaml:"failed"`
	Drained   int64         `yaml:"drained"`
	PerWorker []int64       `yaml:"per_worker"`
}

func newReport(runID string, st scheduler.Stats) *Report {
	return &Report{
		RunID:     runID,
		Workers:   st.Workers,
		Scheduled: st.Scheduled,
		Executed:  st.Executed,
		Stolen:    st.Stolen,
		Fallbacks: st.Fallbacks,
		Failed:    st.Failed,
		Drained:   st.Drained,
		PerWorker: st.PerWorker,
	}
}

// Write renders r in the given format: "text" or "yaml".
func (r *Report) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		out, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "text", "":
		return r.writeText(w)
	default:
		return fmt.Errorf("unknown report format %q (want text or yaml)", format)
	}
}

func (r *Report) writeText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "RUN %s\n", r.RunID)
	fmt.Fprintln(&b, strings.Repeat("-", 40))
	fmt.Fprintf(&b, "Scheduler:  %s (%d workers)\n", r.Scheduler, r.Workers)
	fmt.Fprintf(&b, "Tasks:      %d (+%d async)\n", r.Tasks, r.Async)
	fmt.Fprintf(&b, "Elapsed:    %s\n", r.Elapsed.Round(time.Microsecond))
	fmt.Fprintf(&b, "Scheduled:  %d (%d fallbacks)\n", r.Scheduled, r.Fallbacks)
	fmt.Fprintf(&b, "Executed:   %d (%d stolen, %d drained)\n", r.Executed, r.Stolen, r.Drained)
	fmt.Fprintf(&b, "Failed:     %d\n", r.Failed)
	if r.Async > 0 {
		fmt.Fprintf(&b, "Async sum:  %d\n", r.AsyncSum)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "PER WORKER")
	fmt.Fprintln(&b, strings.Repeat("-", 40))
	for i, n := range r.PerWorker {
		share := 0.0
		if r.Executed > 0 {
			share = float64(n) / float64(r.Executed) * 100
		}
		fmt.Fprintf(&b, "worker %-3d %8d  %5.1f%%\n", i, n, share)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
