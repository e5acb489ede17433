package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"rrsched/internal/job"
	"rrsched/internal/metrics"
	"rrsched/internal/sched"
	"rrsched/internal/trace"
)

// ErrTimeout is returned when a scenario is still running after --timeout,
// typically because its tasks all wait on devices nobody signals.
var ErrTimeout = errors.New("scenario timed out")

func newRunCmd() *cobra.Command {
	var (
		csvPath string
		quiet   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <scenario.yml>",
		Short: "Run a scenario and print its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := job.LoadScenario(args[0])
			if err != nil {
				return err
			}
			return runScenario(cmd.OutOrStdout(), cmd.ErrOrStderr(), sc, csvPath, quiet, timeout)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Write every scheduling event to this CSV file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the metric summary")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up on a scenario still running after this long")

	return cmd
}

func runScenario(out, errOut io.Writer, sc *job.Scenario, csvPath string, quiet bool, timeout time.Duration) (err error) {
	log, err := newLogger(errOut, sc.Scheduler.LogLevel)
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	exp, err := metrics.NewExporter("rrsched", reg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	opts := []sched.Option{sched.WithLogger(log), sched.WithObserver(exp)}

	if csvPath != "" {
		cw, cerr := trace.Create(csvPath)
		if cerr != nil {
			return fmt.Errorf("csv trace: %w", cerr)
		}
		// a trace that failed part way must not look like a clean run
		defer func() {
			if cerr := cw.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("csv trace: %w", cerr))
			}
		}()
		opts = append(opts, sched.WithObserver(cw))
	}
	if !quiet {
		opts = append(opts, sched.WithObserver(sched.ObserverFunc(func(ev sched.Event) {
			printEvent(out, ev)
		})))
	}

	done := make(chan error, 1)
	go func() {
		done <- job.NewRunner(log).Run(sc, opts...)
	}()

	var runErr error
	select {
	case runErr = <-done:
	case <-time.After(timeout):
		// The task threads stay parked; the process is about to exit anyway.
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}

	samples, err := metrics.Summary(reg)
	if err != nil {
		return errors.Join(runErr, err)
	}
	fmt.Fprintln(out, "--- metrics")
	for _, smp := range samples {
		fmt.Fprintf(out, "%s %g\n", smp.Name, smp.Value)
	}
	return runErr
}

func printEvent(w io.Writer, ev sched.Event) {
	switch ev.Kind {
	case sched.EventDispatch:
		fmt.Fprintf(w, "%6d dispatch %-12s prio=%d ready=%d\n", ev.Tick, label(ev), ev.Priority, ev.Ready)
	case sched.EventExit:
		fmt.Fprintf(w, "%6d exit     %-12s active=%d\n", ev.Tick, label(ev), ev.Active)
	case sched.EventIdle:
		fmt.Fprintf(w, "%6d idle\n", ev.Tick)
	}
}

func label(ev sched.Event) string {
	if ev.Name != "" {
		return ev.Name
	}
	return fmt.Sprintf("task-%d", ev.Task)
}
