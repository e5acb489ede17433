package metrics

import (
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrsched/internal/sched"
)

func TestExporterObserve(t *testing.T) {
	reg := prom.NewRegistry()
	m, err := NewExporter("test", reg)
	require.NoError(t, err)

	m.Observe(sched.Event{Kind: sched.EventSpawn, Task: 1, Priority: 3, Ready: 1, Active: 1})
	m.Observe(sched.Event{Kind: sched.EventDispatch, Task: 1, Priority: 3, Ready: 0, Active: 1})
	m.Observe(sched.Event{Kind: sched.EventPreempt, Task: 1, Priority: 3, Ready: 2, Active: 3})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("Dispatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatchTotal.WithLabelValues("3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.preemptTotal.WithLabelValues("3")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.readyDepth))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeTasks))
}

func TestExporterReusesRegisteredCollectors(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewExporter("test", reg)
	require.NoError(t, err)
	second, err := NewExporter("test", reg)
	require.NoError(t, err)

	first.Observe(sched.Event{Kind: sched.EventExit})
	second.Observe(sched.Event{Kind: sched.EventExit})
	assert.Equal(t, 2.0, testutil.ToFloat64(first.eventsTotal.WithLabelValues("Exit")))
}

func TestNilExporterIgnoresEvents(t *testing.T) {
	var m *Exporter
	assert.NotPanics(t, func() { m.Observe(sched.Event{Kind: sched.EventDone}) })
}

func TestExporterWithScheduler(t *testing.T) {
	reg := prom.NewRegistry()
	m, err := NewExporter("", reg)
	require.NoError(t, err)

	s := sched.New(sched.WithObserver(m))
	require.NoError(t, s.Init(1, 0))
	_, err = s.Spawn(func(int) {
		for range 2 {
			_, err := s.Spawn(func(int) { s.Exec() }, 3)
			assert.NoError(t, err)
		}
	}, 3)
	require.NoError(t, err)
	s.Shutdown()

	samples, err := Summary(reg)
	require.NoError(t, err)
	got := map[string]float64{}
	for _, smp := range samples {
		got[smp.Name] = smp.Value
	}
	assert.Equal(t, 3.0, got[`rrsched_events_total{kind="Spawn"}`])
	assert.Equal(t, 3.0, got[`rrsched_events_total{kind="Exit"}`])
	assert.Equal(t, 1.0, got[`rrsched_events_total{kind="Done"}`])
	assert.Equal(t, 0.0, got["rrsched_active_tasks"])
	assert.Equal(t, got[`rrsched_dispatch_total{priority="3"}`], got["rrsched_ready_depth_at_dispatch_count"])
}

func TestExporterRejectsForeignCollector(t *testing.T) {
	reg := prom.NewRegistry()
	// same descriptor as the ready_depth gauge, but a counter vec
	reg.MustRegister(prom.NewCounterVec(prom.CounterOpts{
		Namespace: "test",
		Name:      "ready_depth",
		Help:      "Ready queue length at the last event.",
	}, nil))

	_, err := NewExporter("test", reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register ready_depth")
}
