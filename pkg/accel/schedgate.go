package accel

import "sync"

// gate holds the host's cooperative scheduling lock, if the host
// registered one. Only SynchronizeDevice touches it: the lock is dropped
// for the duration of the hardware wait and re-taken before returning.
var gate struct {
	mu sync.RWMutex
	l  sync.Locker
}

// SetSchedulerGate registers the host's cooperative scheduling lock. The
// caller must hold the lock whenever it invokes SynchronizeDevice; the
// wait runs with the lock released and returns with it held again, on
// failure as well as success. Passing nil removes the gate.
func SetSchedulerGate(l sync.Locker) {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	gate.l = l
}

func schedulerGate() sync.Locker {
	gate.mu.RLock()
	defer gate.mu.RUnlock()
	return gate.l
}
