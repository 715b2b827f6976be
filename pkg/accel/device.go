package accel

import (
	"fmt"
	"strings"
)

// DeviceType identifies one compiled-in accelerator kind. The zero value
// is the host CPU, which is the fallback when no accelerator is present
// and never an "active" accelerator itself.
type DeviceType int

const (
	CPU DeviceType = iota
	CUDA
	Metal
)

func (t DeviceType) String() string {
	switch t {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	case Metal:
		return "metal"
	default:
		return fmt.Sprintf("devicetype(%d)", int(t))
	}
}

// ParseDeviceType resolves a user-supplied device type name.
func ParseDeviceType(name string) (DeviceType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cpu":
		return CPU, nil
	case "cuda":
		return CUDA, nil
	case "metal":
		return Metal, nil
	default:
		return CPU, fmt.Errorf("unknown device type %q (expected cpu, cuda, or metal)", name)
	}
}

// Stream identifies an ordered work queue owned by a backend driver. The
// policy layer only tracks which stream is current per device; the queue
// itself lives in the driver. A Stream is bound to the device it was
// created on for its entire lifetime.
type Stream struct {
	deviceType DeviceType
	device     int
	handle     uintptr
}

// NewStream builds the identity of a driver-owned queue. Drivers call this
// when handing streams to callers; handle 0 names the device's implicit
// default stream.
func NewStream(t DeviceType, device int, handle uintptr) Stream {
	return Stream{deviceType: t, device: device, handle: handle}
}

// DefaultStream returns the implicit default stream of a device.
func DefaultStream(t DeviceType, device int) Stream {
	return Stream{deviceType: t, device: device}
}

func (s Stream) DeviceType() DeviceType { return s.deviceType }

// DeviceIndex returns the device the stream was created on.
func (s Stream) DeviceIndex() int { return s.device }

// Handle returns the driver-owned queue handle; 0 for the default stream.
func (s Stream) Handle() uintptr { return s.handle }

// IsDefault reports whether this is the device's implicit default stream.
func (s Stream) IsDefault() bool { return s.handle == 0 }

func (s Stream) String() string {
	if s.IsDefault() {
		return fmt.Sprintf("%s:%d/default", s.deviceType, s.device)
	}
	return fmt.Sprintf("%s:%d/%#x", s.deviceType, s.device, s.handle)
}
