// Package job turns declarative task programs into scheduler handlers.
package job

import (
	"errors"
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"

	"rrsched/internal/sched"
)

// Scenario mirrors a scenario file: a scheduler block and the top level
// tasks, spawned in order once the scheduler is up.
type Scenario struct {
	Scheduler sched.Config `yaml:"scheduler"`
	Tasks     []Spec       `yaml:"tasks"`
}

// Spec describes one task and what it does, step by step.
type Spec struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	Steps    []Step `yaml:"steps"`
}

// Step is a single operation; exactly one field is set.
type Step struct {
	Exec   int   `yaml:"exec,omitempty"`   // spend that many units
	Wait   *int  `yaml:"wait,omitempty"`   // block on the device
	Signal *int  `yaml:"signal,omitempty"` // wake the device's waiters
	Spawn  *Spec `yaml:"spawn,omitempty"`  // start a child task
}

// LoadScenario reads a scenario file. Scheduler fields missing from the file
// keep their defaults.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	sc := &Scenario{Scheduler: sched.DefaultConfig()}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if sc.Scheduler.LogLevel == "" {
		sc.Scheduler.LogLevel = "info"
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Validate checks the scheduler block and every task program.
func (sc *Scenario) Validate() error {
	if err := sc.Scheduler.Validate(); err != nil {
		return err
	}
	if len(sc.Tasks) == 0 {
		return errors.New("scenario has no tasks")
	}
	for i := range sc.Tasks {
		if err := sc.Tasks[i].validate(sc.Scheduler.Devices); err != nil {
			return err
		}
	}
	return nil
}

func (sp *Spec) validate(devices int) error {
	if sp.Priority < sched.MinPriority || sp.Priority > sched.MaxPriority {
		return fmt.Errorf("task %q priority %d: %w", sp.Name, sp.Priority, sched.ErrInvalidPriority)
	}
	for i, st := range sp.Steps {
		set := 0
		if st.Exec != 0 {
			set++
		}
		for _, dev := range []*int{st.Wait, st.Signal} {
			if dev == nil {
				continue
			}
			set++
			if *dev < 0 || *dev >= devices {
				return fmt.Errorf("task %q step %d device %d: %w", sp.Name, i, *dev, sched.ErrInvalidDevice)
			}
		}
		if st.Spawn != nil {
			set++
			if err := st.Spawn.validate(devices); err != nil {
				return err
			}
		}
		if set != 1 || st.Exec < 0 {
			return fmt.Errorf("task %q step %d: want exactly one of exec, wait, signal, spawn", sp.Name, i)
		}
	}
	return nil
}
