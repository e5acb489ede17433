package sched

import "fmt"

// checkInvariants panics unless every spawned task sits in exactly one of
// the ready queue, a device FIFO, the CPU or the terminated list, with a
// status matching that place. s.mu must be held.
func (s *Scheduler) checkInvariants() {
	const op = "invariant"

	placed := make(map[TaskID]string, len(s.tasks))
	place := func(id TaskID, where string) {
		if prev, dup := placed[id]; dup {
			fatalf(op, "task %d is both in %s and %s", id, prev, where)
		}
		placed[id] = where
	}

	running := 0
	for _, t := range s.tasks {
		if t.Status == StatusRunning {
			running++
		}
		if t.Status != StatusTerminated && t.thread != nil && t.thread.Done() {
			fatalf(op, "task %d thread finished with status %s", t.ID, t.Status)
		}
	}
	if running > 1 {
		fatalf(op, "%d tasks marked running", running)
	}

	if s.running != nil {
		if s.running.Status != StatusRunning {
			fatalf(op, "task %d holds the CPU with status %s", s.running.ID, s.running.Status)
		}
		place(s.running.ID, "running")
	} else if running != 0 {
		fatalf(op, "a task is marked running but the CPU is idle")
	}

	for _, id := range s.ready.Values() {
		if st := s.task(id).Status; st != StatusReady {
			fatalf(op, "task %d queued as ready with status %s", id, st)
		}
		place(id, "ready queue")
	}

	for d, q := range s.waiting {
		for _, v := range q.Values() {
			t := s.task(v.(TaskID))
			if t.Status != StatusWaiting || t.Device != d {
				fatalf(op, "task %d in device %d FIFO with status %s on device %d", t.ID, d, t.Status, t.Device)
			}
			place(t.ID, fmt.Sprintf("device %d", d))
		}
	}

	it := s.terminated.Iterator()
	for it.Next() {
		id := it.Value().(TaskID)
		if st := s.task(id).Status; st != StatusTerminated {
			fatalf(op, "task %d in terminated list with status %s", id, st)
		}
		place(id, "terminated list")
	}

	if len(placed) != len(s.tasks) {
		fatalf(op, "%d of %d tasks accounted for", len(placed), len(s.tasks))
	}
	if want := len(s.tasks) - s.terminated.Size(); s.active != want {
		fatalf(op, "active count %d, expected %d", s.active, want)
	}
}
