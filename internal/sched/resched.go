// internal/sched/resched.go

package sched

// reschedule decides who holds the CPU after a state change. It runs with
// s.mu held and returns the task whose gate must be opened (wake) and the
// running task that lost the CPU (park). Neither gate is touched here.
func (s *Scheduler) reschedule() (wake, park *Task) {
	cur := s.running

	switch {
	case cur == nil || cur.Status == StatusTerminated:
		// CPU is free: hand it to the best ready task, if any.
		s.running = nil
		if s.ready.Empty() {
			if s.active == 0 {
				s.emit(EventDone, nil, -1)
				s.finished.Broadcast()
			} else {
				s.emit(EventIdle, nil, -1)
			}
			return nil, nil
		}
		return s.dispatch(), nil

	case cur.Status == StatusWaiting:
		// cur already sits in its device FIFO, it only leaves the CPU.
		s.running = nil
		if s.ready.Empty() {
			s.emit(EventIdle, nil, -1)
			return nil, cur
		}
		return s.dispatch(), cur
	}

	top, err := s.ready.Top()
	if err != nil {
		if cur.Remaining == 0 {
			s.renew(cur)
		}
		return nil, nil
	}

	next := s.task(top)
	expired := cur.Remaining == 0
	if next.Priority > cur.Priority || (expired && next.Priority == cur.Priority) {
		cur.Status = StatusReady
		cur.Remaining = s.quantum
		cur.Timestamp = s.clock.Tick()
		s.ready.Push(cur.ID)
		s.emit(EventPreempt, cur, -1)

		// next still orders first: it either outranks cur or is older.
		return s.dispatch(), cur
	}

	if expired {
		s.renew(cur)
	}
	return nil, nil
}

// dispatch pops the best ready task and gives it the CPU with a full
// quantum.
func (s *Scheduler) dispatch() *Task {
	id, err := s.ready.Pop()
	if err != nil {
		fatalf("dispatch", "ready queue is empty")
	}
	t := s.task(id)
	t.Status = StatusRunning
	t.Remaining = s.quantum
	s.running = t
	s.emit(EventDispatch, t, -1)
	return t
}

// renew lets the running task keep the CPU for another quantum.
func (s *Scheduler) renew(t *Task) {
	t.Remaining = s.quantum
	t.Timestamp = s.clock.Tick()
	s.emit(EventRenew, t, -1)
}

// commit finishes an operation: it takes the scheduling decision, releases
// s.mu, publishes the events of the operation and then lets the chosen task
// through its gate. The caller must park on the returned task's gate when it
// is not nil; it is always the caller's own task.
func (s *Scheduler) commit() *Task {
	wake, park := s.reschedule()
	if s.checks {
		s.checkInvariants()
	}
	events := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.publish(events)
	if wake != nil {
		wake.gate.Open()
	}
	return park
}

// emit queues an event; s.mu must be held.
func (s *Scheduler) emit(kind EventKind, t *Task, device int) {
	ev := Event{
		Tick:   s.clock.Count(),
		Kind:   kind,
		Task:   InvalidTaskID,
		Device: device,
		Ready:  s.ready.Len(),
		Active: s.active,
	}
	if t != nil {
		ev.Task = t.ID
		ev.Name = t.Name
		ev.Priority = t.Priority
		ev.Remaining = t.Remaining
	}
	s.pending = append(s.pending, ev)
}

func (s *Scheduler) publish(events []Event) {
	for _, ev := range events {
		s.log.Debug().
			Str("event", ev.Kind.String()).
			Uint64("task", uint64(ev.Task)).
			Str("name", ev.Name).
			Int("priority", ev.Priority).
			Int("remaining", ev.Remaining).
			Int("device", ev.Device).
			Int("ready", ev.Ready).
			Uint64("tick", ev.Tick).
			Msg("sched")
		for _, o := range s.observers {
			o.Observe(ev)
		}
	}
}

// start is the body of every task thread.
func (s *Scheduler) start(t *Task) {
	// parked until the first dispatch
	t.gate.Wait()
	t.handler(t.Priority)
	s.exit(t)
}

// exit retires a task whose handler returned and hands the CPU on.
func (s *Scheduler) exit(t *Task) {
	s.mu.Lock()
	if s.running != t {
		s.mu.Unlock()
		fatalf("exit", "task %d returned without holding the CPU", t.ID)
	}

	s.active--
	t.Status = StatusTerminated
	t.Remaining = 0
	s.terminated.Add(t.ID)
	s.emit(EventExit, t, -1)
	s.commit()
}
