// internal/sched/scheduler.go

package sched

import (
	"cmp"
	"fmt"
	"sync"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/queues/arrayqueue"
	"github.com/rs/zerolog"

	"rrsched/internal/osthread"
	"rrsched/internal/pqueue"
)

// Scheduler runs one logical CPU over many task threads: a task thread only
// makes progress while the scheduler has chosen it, every other one is parked
// on its own gate. Choice follows priority first and round robin on a fixed
// quantum among equal priorities.
//
// Task handlers call Exec, Wait, Signal and Spawn from their own thread. The
// host may call Spawn and Signal only while no task holds the CPU, which is
// how the first task is started and how a system whose tasks all wait on
// devices is kicked.
type Scheduler struct {
	mu       sync.Mutex // protects the scheduler state and every Task
	finished *sync.Cond // broadcast when the last active task terminates

	initialized bool
	quantum     int // units a task may run before round robin applies
	devices     int
	clock       TickClock

	tasks      []*Task                // arena, TaskID n lives at index n-1
	ready      *pqueue.Queue[TaskID]  // priority desc, timestamp asc
	running    *Task                  // holder of the CPU, nil when idle
	waiting    []*arrayqueue.Queue    // per device FIFO of TaskID
	terminated *arraylist.List        // TaskIDs waiting to be joined
	active     int                    // tasks not yet terminated
	pending    []Event                // published once mu is released

	log       zerolog.Logger
	observers []Observer
	checks    bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger; scheduling events are logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithObserver registers an observer for scheduling events.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observers = append(s.observers, o) }
}

// WithInvariantChecks verifies the scheduler state after every decision and
// panics with *InvariantError on the first inconsistency.
func WithInvariantChecks() Option {
	return func(s *Scheduler) { s.checks = true }
}

// New creates an uninitialized Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{log: zerolog.Nop()}
	s.finished = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a Scheduler and initializes it from cfg.
func Open(cfg Config, opts ...Option) (*Scheduler, error) {
	if cfg.CheckInvariants {
		opts = append(opts, WithInvariantChecks())
	}
	s := New(opts...)
	if err := s.Init(cfg.Quantum, cfg.Devices); err != nil {
		return nil, err
	}
	return s, nil
}

// Init prepares the scheduler for a quantum of the given length and the given
// number of I/O devices. A failed Init leaves the scheduler uninitialized.
func (s *Scheduler) Init(quantum, devices int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return ErrAlreadyInitialized
	}
	if quantum <= 0 {
		return fmt.Errorf("init quantum=%d: %w", quantum, ErrInvalidQuantum)
	}
	if devices < 0 || devices > MaxDevices {
		return fmt.Errorf("init devices=%d: %w", devices, ErrInvalidDeviceCount)
	}

	s.quantum = quantum
	s.devices = devices
	s.clock.Reset()
	s.tasks = nil
	s.ready = pqueue.New[TaskID](s.compare)
	s.waiting = make([]*arrayqueue.Queue, devices)
	for i := range s.waiting {
		s.waiting[i] = arrayqueue.New()
	}
	s.terminated = arraylist.New()
	s.running = nil
	s.active = 0
	s.pending = nil
	s.initialized = true

	s.log.Info().Int("quantum", quantum).Int("devices", devices).Msg("scheduler initialized")
	return nil
}

// compare orders the ready queue: higher priority first, then the task that
// became ready earlier.
func (s *Scheduler) compare(a, b TaskID) int {
	ta, tb := s.task(a), s.task(b)
	if ta.Priority != tb.Priority {
		return cmp.Compare(tb.Priority, ta.Priority)
	}
	return cmp.Compare(ta.Timestamp, tb.Timestamp)
}

func (s *Scheduler) task(id TaskID) *Task {
	return s.tasks[id-1]
}

// Spawn creates a task running h and queues it as ready. The task thread is
// started at once but does not enter h before it is dispatched. Creating a
// task costs the running task one quantum unit; if the new task wins the CPU
// the calling task is parked until it is chosen again.
//
// The host, as opposed to a task handler, may call Spawn only while no task
// holds the CPU. A host call made while a task runs is charged to that task
// and may park the host on the task's gate.
func (s *Scheduler) Spawn(h Handler, priority int) (TaskID, error) {
	return s.SpawnNamed("", h, priority)
}

// SpawnNamed is Spawn with a label carried by the task's events.
func (s *Scheduler) SpawnNamed(name string, h Handler, priority int) (TaskID, error) {
	if h == nil {
		return InvalidTaskID, ErrNilHandler
	}
	if priority < MinPriority || priority > MaxPriority {
		return InvalidTaskID, fmt.Errorf("spawn priority=%d: %w", priority, ErrInvalidPriority)
	}

	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return InvalidTaskID, ErrNotInitialized
	}

	t := newTask(TaskID(len(s.tasks)+1), name, priority, s.quantum, h)
	s.tasks = append(s.tasks, t)
	t.thread = osthread.Start(func() { s.start(t) })

	t.Status = StatusReady
	t.Timestamp = s.clock.Tick()
	s.active++
	s.ready.Push(t.ID)
	if s.running != nil {
		s.running.charge()
	}
	s.emit(EventSpawn, t, -1)

	if park := s.commit(); park != nil {
		park.gate.Wait()
	}
	return t.ID, nil
}

// Exec spends one quantum unit of the running task. It panics if no task is
// running.
func (s *Scheduler) Exec() {
	s.mu.Lock()
	cur := s.running
	if cur == nil {
		s.mu.Unlock()
		fatalf("exec", "no task running")
	}

	cur.charge()
	if park := s.commit(); park != nil {
		park.gate.Wait()
	}
}

// Wait blocks the running task on device until some task signals it and the
// scheduler chooses it again.
func (s *Scheduler) Wait(device int) error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	cur := s.running
	if cur == nil {
		s.mu.Unlock()
		fatalf("wait", "no task running")
	}
	if device < 0 || device >= s.devices {
		s.mu.Unlock()
		return fmt.Errorf("wait device=%d: %w", device, ErrInvalidDevice)
	}

	cur.charge()
	cur.Status = StatusWaiting
	cur.Device = device
	s.waiting[device].Enqueue(cur.ID)
	s.emit(EventWait, cur, device)

	if park := s.commit(); park != nil {
		park.gate.Wait()
	}
	return nil
}

// Signal makes every task waiting on device ready again, in the order they
// started waiting, and returns how many were woken.
//
// Like Spawn, the host may call Signal only while no task holds the CPU,
// typically to restart a system whose tasks all wait on devices.
func (s *Scheduler) Signal(device int) (int, error) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return 0, ErrNotInitialized
	}
	if device < 0 || device >= s.devices {
		s.mu.Unlock()
		return 0, fmt.Errorf("signal device=%d: %w", device, ErrInvalidDevice)
	}

	if s.running != nil {
		s.running.charge()
	}
	woken := 0
	q := s.waiting[device]
	for !q.Empty() {
		v, _ := q.Dequeue()
		t := s.task(v.(TaskID))
		t.Status = StatusReady
		t.Device = -1
		t.Timestamp = s.clock.Tick()
		s.ready.Push(t.ID)
		s.emit(EventWake, t, device)
		woken++
	}

	if park := s.commit(); park != nil {
		park.gate.Wait()
	}
	return woken, nil
}

// Shutdown waits until every task has terminated, joins their threads and
// returns the scheduler to the uninitialized state. It does nothing if the
// scheduler was never initialized.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return
	}
	for s.active > 0 {
		s.finished.Wait()
	}

	threads := make([]*osthread.Thread, 0, s.terminated.Size())
	it := s.terminated.Iterator()
	for it.Next() {
		threads = append(threads, s.task(it.Value().(TaskID)).thread)
	}
	s.mu.Unlock()

	// The last task may still be publishing its exit; joining waits for it.
	for _, th := range threads {
		th.Join()
	}

	s.mu.Lock()
	s.terminated.Clear()
	s.tasks = nil
	s.ready = nil
	s.waiting = nil
	s.running = nil
	s.initialized = false
	s.mu.Unlock()

	s.log.Info().Int("tasks", len(threads)).Msg("scheduler shut down")
}

// Running returns the task holding the CPU.
func (s *Scheduler) Running() (TaskID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == nil {
		return InvalidTaskID, false
	}
	return s.running.ID, true
}

// ReadyLen returns the number of ready tasks.
func (s *Scheduler) ReadyLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready == nil {
		return 0
	}
	return s.ready.Len()
}

// Waiting returns the tasks waiting on device, oldest first.
func (s *Scheduler) Waiting(device int) []TaskID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if device < 0 || device >= len(s.waiting) {
		return nil
	}
	var ids []TaskID
	for _, v := range s.waiting[device].Values() {
		ids = append(ids, v.(TaskID))
	}
	return ids
}

// Active returns the number of tasks that have not terminated.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Lookup returns a snapshot of the task's bookkeeping.
func (s *Scheduler) Lookup(id TaskID) (TaskInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == InvalidTaskID || int(id) > len(s.tasks) {
		return TaskInfo{}, false
	}
	return s.task(id).info(), true
}

// Quantum returns the configured quantum length, 0 when uninitialized.
func (s *Scheduler) Quantum() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0
	}
	return s.quantum
}

// Devices returns the configured device count, 0 when uninitialized.
func (s *Scheduler) Devices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0
	}
	return s.devices
}
