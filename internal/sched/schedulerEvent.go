// internal/sched/schedulerEvent.go

package sched

import "sync"

// EventKind represents the type of scheduler event
type EventKind int

const (
	EventSpawn    EventKind = iota // task created and queued
	EventDispatch                  // task given the CPU
	EventPreempt                   // running task sent back to the ready queue
	EventRenew                     // quantum expired, task keeps the CPU
	EventWait                      // task blocked on a device
	EventWake                      // task released by a device signal
	EventExit                      // task handler returned
	EventIdle                      // nothing ready, tasks still blocked
	EventDone                      // every task has terminated
)

// Event is emitted on every scheduling decision. Task is InvalidTaskID for
// EventIdle and EventDone; Device is -1 unless the event concerns one.
type Event struct {
	Tick      uint64
	Kind      EventKind
	Task      TaskID
	Name      string
	Priority  int
	Remaining int
	Device    int
	Ready     int // ready queue length when the event was emitted
	Active    int // tasks not yet terminated
}

func (k EventKind) String() string {
	switch k {
	case EventSpawn:
		return "Spawn"
	case EventDispatch:
		return "Dispatch"
	case EventPreempt:
		return "Preempt"
	case EventRenew:
		return "Renew"
	case EventWait:
		return "Wait"
	case EventWake:
		return "Wake"
	case EventExit:
		return "Exit"
	case EventIdle:
		return "Idle"
	case EventDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Observer receives events after the scheduler lock has been released and
// before the next task is let through, so events arrive in decision order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Recorder keeps every event it observes.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Dispatches returns the tasks given the CPU, in order.
func (r *Recorder) Dispatches() []TaskID {
	return r.Tasks(EventDispatch)
}

// Tasks returns the task of every event of the given kind, in order.
func (r *Recorder) Tasks(kind EventKind) []TaskID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []TaskID
	for _, ev := range r.events {
		if ev.Kind == kind {
			ids = append(ids, ev.Task)
		}
	}
	return ids
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	return len(r.Tasks(kind))
}
