package accel

import "sync"

// initState is the per-driver initialization lifecycle. The only
// transitions are uninitialized -> initializing -> ready, plus
// initializing -> uninitialized when an attempt fails. Ready is terminal.
type initState int

const (
	stateUninitialized initState = iota
	stateInitializing
	stateReady
)

// initGuard serializes driver initialization: exactly one attempt runs at
// a time, callers arriving during an attempt block until it resolves, and
// a failed attempt re-opens the guard so a later call can retry.
type initGuard struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state initState
	gen   uint64 // attempt counter, pairs waiters with "their" attempt
	err   error  // outcome of the most recently finished attempt
}

// ensure drives the guard to ready, running init if this caller wins the
// uninitialized->initializing transition. Callers that instead observe a
// running attempt wait for it and share its outcome.
func (g *initGuard) ensure(t DeviceType, init func() error) error {
	g.mu.Lock()
	for {
		switch g.state {
		case stateReady:
			g.mu.Unlock()
			return nil

		case stateInitializing:
			gen := g.gen
			g.wait()
			if g.state == stateUninitialized && g.gen == gen && g.err != nil {
				// The attempt this caller was waiting on failed.
				err := g.err
				g.mu.Unlock()
				return &InitError{Type: t, Err: err}
			}
			// Ready, or another attempt superseded the one we watched.

		case stateUninitialized:
			g.state = stateInitializing
			g.gen++
			g.mu.Unlock()

			err := init()

			g.mu.Lock()
			if err != nil {
				g.state = stateUninitialized
				g.err = err
			} else {
				g.state = stateReady
				g.err = nil
			}
			if g.cond != nil {
				g.cond.Broadcast()
			}
			g.mu.Unlock()

			if err != nil {
				return &InitError{Type: t, Err: err}
			}
			return nil
		}
	}
}

// initialized reports ready without triggering anything.
func (g *initGuard) initialized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == stateReady
}

func (g *initGuard) wait() {
	if g.cond == nil {
		g.cond = sync.NewCond(&g.mu)
	}
	g.cond.Wait()
}

// ensureReady initializes the registered driver if it is not ready yet.
func ensureReady(d *registeredDriver) error {
	return d.guard.ensure(d.driver.Type(), d.driver.Init)
}

// Initialized reports whether the driver for the given backend type has
// completed initialization. It never triggers initialization itself and
// is false for the CPU fallback and for types not compiled in.
func Initialized(t DeviceType) bool {
	d := lookupDriver(t)
	if d == nil {
		return false
	}
	return d.guard.initialized()
}
