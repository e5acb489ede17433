package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndStatusNames(t *testing.T) {
	assert.Equal(t, "Dispatch", EventDispatch.String())
	assert.Equal(t, "Done", EventDone.String())
	assert.Equal(t, "Unknown", EventKind(99).String())
	assert.Equal(t, "Waiting", StatusWaiting.String())
	assert.Equal(t, "Unknown", Status(-1).String())
}

func TestObserverFunc(t *testing.T) {
	var got []EventKind
	s, _ := newTestScheduler(t, 1, 0)
	s.observers = append(s.observers, ObserverFunc(func(ev Event) {
		got = append(got, ev.Kind)
	}))

	_, err := s.Spawn(func(int) { s.Exec() }, 1)
	assert.NoError(t, err)
	shutdown(t, s)

	assert.Equal(t, []EventKind{
		EventSpawn, EventDispatch, EventRenew, EventExit, EventDone,
	}, got)
}

func TestTickClock(t *testing.T) {
	var c TickClock
	assert.Equal(t, uint64(1), c.Tick())
	assert.Equal(t, uint64(2), c.Tick())
	assert.Equal(t, uint64(2), c.Count())
	c.Reset()
	assert.Equal(t, uint64(0), c.Count())
}
