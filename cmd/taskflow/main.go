package main

import (
	"os"

	"github.com/vnykmshr/taskflow/internal/cli"
	"github.com/vnykmshr/taskflow/pkg/async/scheduler"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Drains the process-wide scheduler if any command used it.
	defer scheduler.CloseDefault()

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
