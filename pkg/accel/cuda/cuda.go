//go:build cuda

package cuda

/*
#cgo LDFLAGS: -lcudart

// Minimal CUDA runtime forward declarations to avoid requiring headers at
// compile time. The linker still requires libcudart when building with the
// cuda tag.
typedef int cudaError_t;

extern const char* cudaGetErrorString(cudaError_t err);
extern cudaError_t cudaGetDeviceCount(int* count);
extern cudaError_t cudaGetDevice(int* device);
extern cudaError_t cudaSetDevice(int device);
extern cudaError_t cudaFree(void* ptr);
extern cudaError_t cudaDeviceSynchronize(void);

static const char* accelCudaGetErrorString(int err) {
	return cudaGetErrorString((cudaError_t)err);
}

static int accelCudaGetDeviceCount(int* out) {
	cudaError_t err = cudaGetDeviceCount(out);
	return (int)err;
}

static int accelCudaGetDevice(int* out) {
	cudaError_t err = cudaGetDevice(out);
	return (int)err;
}

static int accelCudaSetDevice(int device) {
	cudaError_t err = cudaSetDevice(device);
	return (int)err;
}

// cudaFree(0) forces creation of the primary context on the current
// device, which is the conventional way to eagerly initialize the runtime.
static int accelCudaPrimeContext(void) {
	cudaError_t err = cudaFree(0);
	return (int)err;
}

static int accelCudaDeviceSynchronize(void) {
	cudaError_t err = cudaDeviceSynchronize();
	return (int)err;
}
*/
import "C"

import (
	"fmt"
	"sync"

	"github.com/samcharles93/accel/pkg/accel"
)

const enabled = true

// Enabled reports whether the CUDA driver is compiled into this binary.
func Enabled() bool { return enabled }

func init() {
	accel.RegisterDriver(&Driver{streams: make(map[int]accel.Stream)})
}

// Driver implements accel.Driver on top of the CUDA runtime. The runtime
// owns the devices and streams; the driver tracks which stream is current
// per device.
type Driver struct {
	mu      sync.Mutex
	streams map[int]accel.Stream
}

// New returns the CUDA driver. Most callers never need this; importing
// the package registers the driver with accel.
func New() (*Driver, error) {
	return &Driver{streams: make(map[int]accel.Stream)}, nil
}

func (d *Driver) Type() accel.DeviceType { return accel.CUDA }

// Probe reports whether a CUDA device is present. cudaGetDeviceCount
// touches only the driver, not the runtime context, so this stays cheap.
func (d *Driver) Probe() bool {
	var n C.int
	if C.accelCudaGetDeviceCount(&n) != 0 {
		return false
	}
	return n > 0
}

func (d *Driver) Init() error {
	if err := cudaResult(C.accelCudaPrimeContext(), "prime context"); err != nil {
		return err
	}
	return nil
}

func (d *Driver) DeviceCount() int {
	var n C.int
	if C.accelCudaGetDeviceCount(&n) != 0 {
		return 0
	}
	return int(n)
}

func (d *Driver) CurrentDeviceIndex() (int, error) {
	var device C.int
	if err := cudaResult(C.accelCudaGetDevice(&device), "get device"); err != nil {
		return 0, err
	}
	return int(device), nil
}

func (d *Driver) SetCurrentDeviceIndex(index int) error {
	return cudaResult(C.accelCudaSetDevice(C.int(index)), "set device")
}

func (d *Driver) CurrentStream(device int) (accel.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.streams[device]; ok {
		return s, nil
	}
	return accel.DefaultStream(accel.CUDA, device), nil
}

func (d *Driver) SetCurrentStream(s accel.Stream) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams[s.DeviceIndex()] = s
	return nil
}

// Synchronize drains all streams on the device. cudaDeviceSynchronize
// acts on the current device, so the current device is switched over for
// the wait and restored afterwards.
func (d *Driver) Synchronize(device int) error {
	prev, err := d.CurrentDeviceIndex()
	if err != nil {
		return err
	}
	if prev != device {
		if err := d.SetCurrentDeviceIndex(device); err != nil {
			return err
		}
		defer func() { _ = d.SetCurrentDeviceIndex(prev) }()
	}
	return cudaResult(C.accelCudaDeviceSynchronize(), "device synchronize")
}

func cudaResult(code C.int, op string) error {
	if code == 0 {
		return nil
	}
	return fmt.Errorf("cuda: %s: %s (code %d)", op, C.GoString(C.accelCudaGetErrorString(code)), int(code))
}
