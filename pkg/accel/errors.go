package accel

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccelerator is returned by checked operations when no
	// accelerator backend is compiled in or present.
	ErrNoAccelerator = errors.New("accel: no accelerator available")

	// ErrInvalidDeviceIndex is returned when a device index is outside
	// [0, DeviceCount).
	ErrInvalidDeviceIndex = errors.New("accel: invalid device index")

	// ErrInvalidStream is returned when a stream does not belong to the
	// active accelerator.
	ErrInvalidStream = errors.New("accel: stream does not belong to the active accelerator")
)

// InitError reports a failed driver initialization. The failure is
// retryable: the backend reverts to uninitialized and the next operation
// starts a fresh attempt.
type InitError struct {
	Type DeviceType
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("accel: %s driver initialization failed: %v", e.Type, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }
