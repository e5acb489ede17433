package osthread

import "runtime"

// Thread is a goroutine pinned to its own OS thread for its whole life.
type Thread struct {
	done chan struct{}
}

// Start runs fn on a new thread and returns immediately.
func Start(fn func()) *Thread {
	t := &Thread{done: make(chan struct{})}
	go func() {
		// Never unlocked: the OS thread is torn down together with fn.
		runtime.LockOSThread()
		defer close(t.done)
		fn()
	}()
	return t
}

// Join blocks until fn has returned.
func (t *Thread) Join() {
	<-t.done
}

// Done reports whether fn has returned.
func (t *Thread) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
