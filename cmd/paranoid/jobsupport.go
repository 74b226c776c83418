package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/bradylowe/paranoid-coder/internal/jobs"
	"github.com/bradylowe/paranoid-coder/internal/logging"
)

// runAsJob submits work to a single-use, single-worker jobs.Runner and
// blocks until it reaches a terminal state, forwarding SIGINT as job
// cancellation rather than an abrupt process kill. This is how
// summarize/analyze/index exercise the bounded worker pool (§5) even
// though the CLI itself is not a long-running daemon: each invocation
// gets its own short-lived registry, scoped to the one job it submits.
func runAsJob(logger *logging.Logger, jobType jobs.Type, work jobs.Handler) (jobs.Snapshot, error) {
	runner := jobs.NewRunner(logger, jobs.Config{QueueSize: 1, WorkerCount: 1})
	runner.RegisterHandler(jobType, work)
	runner.Start()
	defer runner.Stop(5 * time.Second)

	id, err := runner.Submit(jobType)
	if err != nil {
		return jobs.Snapshot{}, err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\ncancelling...")
			runner.Cancel(id)
		case <-time.After(50 * time.Millisecond):
		}

		snap, ok := runner.Get(id)
		if !ok {
			return jobs.Snapshot{}, fmt.Errorf("job %s disappeared from the registry", id)
		}
		if snap.Status == jobs.Completed || snap.Status == jobs.Failed || snap.Status == jobs.Cancelled {
			return snap, nil
		}
	}
}
