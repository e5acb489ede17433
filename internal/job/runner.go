package job

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"rrsched/internal/sched"
)

// BootstrapName labels the task that spawns a scenario's top level tasks.
const BootstrapName = "init"

// Runner executes task programs on a scheduler.
type Runner struct {
	s   *sched.Scheduler
	log zerolog.Logger

	mu   sync.Mutex
	errs []error
}

func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log}
}

// Run initializes a scheduler from the scenario, runs every task to
// completion and shuts the scheduler down. Step errors do not stop the
// scenario; they are joined into the returned error.
func (r *Runner) Run(sc *Scenario, opts ...sched.Option) error {
	s, err := sched.Open(sc.Scheduler, opts...)
	if err != nil {
		return err
	}
	r.s = s

	// A top priority task spawns the others so that the host never races a
	// running task.
	boot := func(int) {
		for _, spec := range sc.Tasks {
			if _, err := r.Spawn(spec); err != nil {
				r.fail(err)
			}
		}
	}
	if _, err := s.SpawnNamed(BootstrapName, boot, sched.MaxPriority); err != nil {
		s.Shutdown()
		return err
	}

	s.Shutdown()
	return r.Err()
}

// Spawn starts a task running spec's program.
func (r *Runner) Spawn(spec Spec) (sched.TaskID, error) {
	id, err := r.s.SpawnNamed(spec.Name, r.Handler(spec), spec.Priority)
	if err != nil {
		return id, fmt.Errorf("spawn %q: %w", spec.Name, err)
	}
	return id, nil
}

// Handler returns the body of a task running spec's program.
func (r *Runner) Handler(spec Spec) sched.Handler {
	return func(priority int) {
		for i, st := range spec.Steps {
			switch {
			case st.Spawn != nil:
				if _, err := r.Spawn(*st.Spawn); err != nil {
					r.fail(fmt.Errorf("task %q step %d: %w", spec.Name, i, err))
				}
			case st.Wait != nil:
				if err := r.s.Wait(*st.Wait); err != nil {
					r.fail(fmt.Errorf("task %q step %d: %w", spec.Name, i, err))
				}
			case st.Signal != nil:
				n, err := r.s.Signal(*st.Signal)
				if err != nil {
					r.fail(fmt.Errorf("task %q step %d: %w", spec.Name, i, err))
					continue
				}
				r.log.Debug().Str("task", spec.Name).Int("device", *st.Signal).Int("woken", n).Msg("signal")
			default:
				Burst(r.s, st.Exec)(priority)
			}
		}
	}
}

func (r *Runner) fail(err error) {
	r.log.Warn().Err(err).Msg("step failed")
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

// Err joins every step error seen so far.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}
