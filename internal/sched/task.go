package sched

import "rrsched/internal/osthread"

const (
	MinPriority = 0
	MaxPriority = 5

	// MaxDevices bounds the device count accepted by Init.
	MaxDevices = 256
)

// TaskID uniquely identifies a task in the scheduler.
// IDs start at 1; InvalidTaskID is what a failed Spawn returns.
type TaskID uint64

const InvalidTaskID TaskID = 0

// Handler is the body of a task. It receives the priority it was spawned
// with and runs on the task's own thread.
type Handler func(priority int)

// Status is a task's position in its life cycle.
type Status int

const (
	StatusNew Status = iota
	StatusReady
	StatusRunning
	StatusWaiting
	StatusTerminated
)

func (st Status) String() string {
	switch st {
	case StatusNew:
		return "New"
	case StatusReady:
		return "Ready"
	case StatusRunning:
		return "Running"
	case StatusWaiting:
		return "Waiting"
	case StatusTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Task represents one schedulable task unit. Every field is guarded by the
// scheduler lock.
type Task struct {
	ID        TaskID
	Name      string // optional label, only used in events and logs
	Priority  int    // MinPriority - MaxPriority, higher runs first
	Timestamp uint64 // tick of the last time the task became ready
	Status    Status
	Remaining int // quantum units left before round robin applies
	Device    int // device waited on while StatusWaiting, -1 otherwise

	handler Handler
	gate    *osthread.Gate
	thread  *osthread.Thread
}

// TaskInfo is a copy of a task's bookkeeping taken under the lock.
type TaskInfo struct {
	ID        TaskID
	Name      string
	Priority  int
	Timestamp uint64
	Status    Status
	Remaining int
	Device    int
}

func newTask(id TaskID, name string, priority, quantum int, h Handler) *Task {
	return &Task{
		ID:        id,
		Name:      name,
		Priority:  priority,
		Status:    StatusNew,
		Remaining: quantum,
		Device:    -1,
		handler:   h,
		gate:      osthread.NewGate(),
	}
}

func (t *Task) info() TaskInfo {
	return TaskInfo{
		ID:        t.ID,
		Name:      t.Name,
		Priority:  t.Priority,
		Timestamp: t.Timestamp,
		Status:    t.Status,
		Remaining: t.Remaining,
		Device:    t.Device,
	}
}

// charge spends one unit of the task's quantum.
func (t *Task) charge() {
	if t.Remaining > 0 {
		t.Remaining--
	}
}
