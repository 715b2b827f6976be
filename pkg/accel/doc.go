// Package accel provides a single logical "current accelerator" for a
// process that may be built with zero or more mutually-exclusive hardware
// backends.
//
// Callers query, select, and synchronize against "the accelerator" without
// knowing at compile time which backend is present. Backend drivers are
// compiled in via build tags and register themselves on import:
//
//	import _ "github.com/samcharles93/accel/pkg/accel/cuda"  // -tags cuda
//	import _ "github.com/samcharles93/accel/pkg/accel/metal" // -tags metal
//
// The first operation that needs the accelerator probes the registered
// drivers in priority order and memoizes the winner for the rest of the
// process. Driver initialization is deferred further still: it happens on
// the first operation that genuinely requires a ready driver, exactly once
// no matter how many goroutines race for it, and a failed attempt can be
// retried.
//
// Without any driver compiled in, every query degrades to the CPU
// fallback: Accelerator(false) reports CPU, DeviceCount reports zero, and
// the checked operations return ErrNoAccelerator.
package accel
