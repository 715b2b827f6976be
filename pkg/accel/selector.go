package accel

import (
	"log/slog"
	"sync"
)

// selection is the process-wide active accelerator. It is computed at most
// once and never changes afterwards; concurrent readers only ever see the
// resolved value.
var selection struct {
	mu       sync.Mutex
	resolved bool
	active   DeviceType
}

// Accelerator returns the active accelerator type for this process.
//
// The first call probes the registered drivers in priority order and
// memoizes the first one whose hardware is present; none present (or none
// compiled in) memoizes the CPU fallback. The probe is an existence check
// only, it does not initialize the winning driver.
//
// With checked=false the memoized result is returned as-is, CPU included,
// and the error is always nil. With checked=true the CPU fallback becomes
// ErrNoAccelerator.
func Accelerator(checked bool) (DeviceType, error) {
	t := activeAccelerator()
	if checked && t == CPU {
		return CPU, ErrNoAccelerator
	}
	return t, nil
}

func activeAccelerator() DeviceType {
	selection.mu.Lock()
	defer selection.mu.Unlock()

	if selection.resolved {
		return selection.active
	}

	selection.active = CPU
	for _, t := range RegisteredTypes() {
		d := lookupDriver(t)
		if d == nil || !d.driver.Probe() {
			continue
		}
		selection.active = t
		break
	}
	selection.resolved = true

	if selection.active == CPU {
		slog.Debug("no accelerator present, using cpu fallback")
	} else {
		slog.Debug("accelerator selected", "type", selection.active.String())
	}
	return selection.active
}
