// Package metrics exposes scheduler events as Prometheus collectors.
package metrics

import (
	"errors"
	"fmt"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"

	"rrsched/internal/sched"
)

// Exporter is a sched.Observer feeding Prometheus collectors.
type Exporter struct {
	eventsTotal   *prom.CounterVec
	dispatchTotal *prom.CounterVec
	preemptTotal  *prom.CounterVec
	readyDepth    prom.Gauge
	activeTasks   prom.Gauge
	readyAtPick   prom.Histogram
}

var _ sched.Observer = (*Exporter)(nil)

// NewExporter creates and registers the collectors. Collectors already
// registered under the same name are reused, so several schedulers can
// share one registry.
func NewExporter(namespace string, reg prom.Registerer) (*Exporter, error) {
	if namespace == "" {
		namespace = "rrsched"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	eventsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Scheduling events by kind.",
	}, []string{"kind"})
	dispatchVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_total",
		Help:      "Tasks given the CPU, by task priority.",
	}, []string{"priority"})
	preemptVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "preempt_total",
		Help:      "Running tasks sent back to the ready queue, by task priority.",
	}, []string{"priority"})
	readyGauge := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "ready_depth",
		Help:      "Ready queue length at the last event.",
	})
	activeGauge := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "active_tasks",
		Help:      "Tasks not yet terminated.",
	})
	readyHist := prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "ready_depth_at_dispatch",
		Help:      "Ready queue length left behind by each dispatch.",
		Buckets:   prom.LinearBuckets(0, 1, 8),
	})

	var err error
	if eventsVec, err = registerCollector(reg, "events_total", eventsVec); err != nil {
		return nil, err
	}
	if dispatchVec, err = registerCollector(reg, "dispatch_total", dispatchVec); err != nil {
		return nil, err
	}
	if preemptVec, err = registerCollector(reg, "preempt_total", preemptVec); err != nil {
		return nil, err
	}
	if readyGauge, err = registerCollector(reg, "ready_depth", readyGauge); err != nil {
		return nil, err
	}
	if activeGauge, err = registerCollector(reg, "active_tasks", activeGauge); err != nil {
		return nil, err
	}
	if readyHist, err = registerCollector(reg, "ready_depth_at_dispatch", readyHist); err != nil {
		return nil, err
	}

	return &Exporter{
		eventsTotal:   eventsVec,
		dispatchTotal: dispatchVec,
		preemptTotal:  preemptVec,
		readyDepth:    readyGauge,
		activeTasks:   activeGauge,
		readyAtPick:   readyHist,
	}, nil
}

// Observe records one scheduling event.
func (m *Exporter) Observe(ev sched.Event) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(ev.Kind.String()).Inc()
	m.readyDepth.Set(float64(ev.Ready))
	m.activeTasks.Set(float64(ev.Active))

	switch ev.Kind {
	case sched.EventDispatch:
		m.dispatchTotal.WithLabelValues(strconv.Itoa(ev.Priority)).Inc()
		m.readyAtPick.Observe(float64(ev.Ready))
	case sched.EventPreempt:
		m.preemptTotal.WithLabelValues(strconv.Itoa(ev.Priority)).Inc()
	}
}

// registerCollector registers c, or returns the collector already
// registered under the same descriptor when it has the same type.
func registerCollector[T prom.Collector](reg prom.Registerer, name string, c T) (T, error) {
	err := reg.Register(c)
	var dup prom.AlreadyRegisteredError
	switch {
	case err == nil:
		return c, nil
	case !errors.As(err, &dup):
		return c, fmt.Errorf("register %s: %w", name, err)
	}

	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("register %s: existing collector is %T, want %T", name, dup.ExistingCollector, c)
	}
	return existing, nil
}
