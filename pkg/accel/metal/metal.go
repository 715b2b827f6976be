//go:build metal && darwin

package metal

/*
#cgo CFLAGS: -fobjc-arc
#cgo LDFLAGS: -framework Metal -framework Foundation

#include "metal_bridge.h"
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/samcharles93/accel/pkg/accel"
)

const enabled = true

// Enabled reports whether the Metal driver is compiled into this binary.
func Enabled() bool { return enabled }

func init() {
	accel.RegisterDriver(&Driver{streams: make(map[int]accel.Stream)})
}

// Driver implements accel.Driver on top of Metal. Streams are command
// queues owned by whoever created them; the driver tracks which queue is
// current per device and drains it on synchronize.
type Driver struct {
	mu      sync.Mutex
	current int
	streams map[int]accel.Stream
}

// New returns the Metal driver. Importing the package already registers
// it with accel; New exists for callers that want a private instance.
func New() (*Driver, error) {
	return &Driver{streams: make(map[int]accel.Stream)}, nil
}

func (d *Driver) Type() accel.DeviceType { return accel.Metal }

// Probe checks for a system GPU without creating any driver state beyond
// the transient device handle.
func (d *Driver) Probe() bool {
	return C.accelMetalDeviceCount() > 0
}

func (d *Driver) Init() error {
	if C.accelMetalAcquireDevice() == 0 {
		return fmt.Errorf("metal: no system default device")
	}
	return nil
}

func (d *Driver) DeviceCount() int {
	return int(C.accelMetalDeviceCount())
}

func (d *Driver) CurrentDeviceIndex() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, nil
}

func (d *Driver) SetCurrentDeviceIndex(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = index
	return nil
}

func (d *Driver) CurrentStream(device int) (accel.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.streams[device]; ok {
		return s, nil
	}
	return accel.DefaultStream(accel.Metal, device), nil
}

func (d *Driver) SetCurrentStream(s accel.Stream) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams[s.DeviceIndex()] = s
	return nil
}

// Synchronize drains the device's current command queue by committing an
// empty command buffer and waiting for it. The default stream has no
// queue of ours to drain; Metal work always runs through an explicit
// queue, so an untouched default stream has nothing outstanding.
func (d *Driver) Synchronize(device int) error {
	s, err := d.CurrentStream(device)
	if err != nil {
		return err
	}
	if s.IsDefault() {
		return nil
	}
	if C.accelMetalDrainQueue(unsafe.Pointer(s.Handle())) != 0 {
		return fmt.Errorf("metal: drain queue on device %d failed", device)
	}
	return nil
}
