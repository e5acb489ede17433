package job

import "rrsched/internal/sched"

// Burst returns a handler that just spends n quantum units.
func Burst(s *sched.Scheduler, n int) sched.Handler {
	return func(int) {
		for range n {
			s.Exec()
		}
	}
}
