package api

import "github.com/samcharles93/accel/pkg/accel"

// Runtime is the slice of the accel package the server needs. It exists
// so handler tests can substitute a scripted runtime for the process-wide
// one.
type Runtime interface {
	Accelerator(checked bool) (accel.DeviceType, error)
	RegisteredTypes() []accel.DeviceType
	Initialized(t accel.DeviceType) bool
	DeviceCount() (int, error)
	GetDeviceIndex() (int, error)
	SetDeviceIndex(index int) error
	GetStream(device int) (accel.Stream, error)
	SynchronizeDevice(device int) error
}

// ProcessRuntime is the Runtime backed by the process-wide accelerator
// state in pkg/accel.
type ProcessRuntime struct{}

func (ProcessRuntime) Accelerator(checked bool) (accel.DeviceType, error) {
	return accel.Accelerator(checked)
}

func (ProcessRuntime) RegisteredTypes() []accel.DeviceType { return accel.RegisteredTypes() }

func (ProcessRuntime) Initialized(t accel.DeviceType) bool { return accel.Initialized(t) }

func (ProcessRuntime) DeviceCount() (int, error) { return accel.DeviceCount() }

func (ProcessRuntime) GetDeviceIndex() (int, error) { return accel.GetDeviceIndex() }

func (ProcessRuntime) SetDeviceIndex(index int) error { return accel.SetDeviceIndex(index) }

func (ProcessRuntime) GetStream(device int) (accel.Stream, error) { return accel.GetStream(device) }

func (ProcessRuntime) SynchronizeDevice(device int) error { return accel.SynchronizeDevice(device) }
