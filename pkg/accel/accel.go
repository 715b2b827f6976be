package accel

import "fmt"

// DeviceCount returns the number of devices available on the active
// accelerator, initializing its driver on first use. Under the CPU
// fallback there is no accelerator to count and the result is 0. The
// only error is a failed driver initialization.
func DeviceCount() (int, error) {
	t, _ := Accelerator(false)
	if t == CPU {
		return 0, nil
	}
	d := lookupDriver(t)
	if err := ensureReady(d); err != nil {
		return 0, err
	}
	return d.driver.DeviceCount(), nil
}

// SetDeviceIndex makes index the current device for the calling context.
//
// A negative index means "no preference" and leaves the current device
// unchanged; callers can pass it through uniformly without branching.
// That no-op still requires an active accelerator: with none present the
// call fails with ErrNoAccelerator before the index is looked at.
func SetDeviceIndex(index int) error {
	t, err := Accelerator(true)
	if err != nil {
		return err
	}
	if index < 0 {
		return nil
	}
	d := lookupDriver(t)
	if err := ensureReady(d); err != nil {
		return err
	}
	if n := d.driver.DeviceCount(); index >= n {
		return fmt.Errorf("%w: %d (device count %d)", ErrInvalidDeviceIndex, index, n)
	}
	return d.driver.SetCurrentDeviceIndex(index)
}

// GetDeviceIndex returns the current device for the calling context.
// Even though this is a read, it initializes the driver: "current device"
// only means something once the backend is up.
func GetDeviceIndex() (int, error) {
	t, err := Accelerator(true)
	if err != nil {
		return 0, err
	}
	d := lookupDriver(t)
	if err := ensureReady(d); err != nil {
		return 0, err
	}
	return d.driver.CurrentDeviceIndex()
}

// SetStream makes s the current stream on its device. A stream carries
// its device with it, so installing a stream that lives on another device
// switches the current device as a side effect. The device switch happens
// before the stream is installed; doing it the other way around would
// leave the active device and active stream disagreeing.
func SetStream(s Stream) error {
	t, err := Accelerator(true)
	if err != nil {
		return err
	}
	if s.DeviceType() != t {
		return fmt.Errorf("%w: stream is on %s, active accelerator is %s", ErrInvalidStream, s.DeviceType(), t)
	}
	d := lookupDriver(t)
	if err := ensureReady(d); err != nil {
		return err
	}
	cur, err := d.driver.CurrentDeviceIndex()
	if err != nil {
		return err
	}
	if cur != s.DeviceIndex() {
		if err := d.driver.SetCurrentDeviceIndex(s.DeviceIndex()); err != nil {
			return err
		}
	}
	return d.driver.SetCurrentStream(s)
}

// GetStream returns the current stream on the device, which is the
// device's default stream if none was explicitly installed.
func GetStream(device int) (Stream, error) {
	t, err := Accelerator(true)
	if err != nil {
		return Stream{}, err
	}
	d := lookupDriver(t)
	if err := ensureReady(d); err != nil {
		return Stream{}, err
	}
	return d.driver.CurrentStream(device)
}

// SynchronizeDevice blocks the calling goroutine until all work enqueued
// on the device's streams has completed.
//
// If the driver was never initialized there is nothing to wait for and
// the call returns immediately without initializing it; confirming "no
// outstanding work" must not itself acquire hardware. While the wait is
// in flight the registered scheduler gate, if any, is released so other
// tasks on the host scheduler keep running; it is re-acquired on every
// exit path.
func SynchronizeDevice(device int) error {
	t, err := Accelerator(true)
	if err != nil {
		return err
	}
	d := lookupDriver(t)
	if !d.guard.initialized() {
		return nil
	}
	if err := ensureReady(d); err != nil {
		return err
	}
	if gate := schedulerGate(); gate != nil {
		gate.Unlock()
		defer gate.Lock()
	}
	return d.driver.Synchronize(device)
}
