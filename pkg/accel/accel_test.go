package accel

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeDriver is a scriptable in-memory backend driver. It records call
// ordering and counts so tests can observe initialization and the
// device-before-stream switch.
type fakeDriver struct {
	typ     DeviceType
	present bool
	devices int

	probeCalls atomic.Int32
	initCalls  atomic.Int32
	initFn     func() error
	syncFn     func(device int) error

	mu      sync.Mutex
	current int
	streams map[int]Stream
	ops     []string
}

func newFakeDriver(t DeviceType, devices int) *fakeDriver {
	return &fakeDriver{
		typ:     t,
		present: true,
		devices: devices,
		streams: make(map[int]Stream),
	}
}

func (d *fakeDriver) Type() DeviceType { return d.typ }

func (d *fakeDriver) Probe() bool {
	d.probeCalls.Add(1)
	return d.present
}

func (d *fakeDriver) Init() error {
	d.initCalls.Add(1)
	if d.initFn != nil {
		return d.initFn()
	}
	return nil
}

func (d *fakeDriver) DeviceCount() int { return d.devices }

func (d *fakeDriver) CurrentDeviceIndex() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, nil
}

func (d *fakeDriver) SetCurrentDeviceIndex(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = index
	d.ops = append(d.ops, fmt.Sprintf("device=%d", index))
	return nil
}

func (d *fakeDriver) CurrentStream(device int) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.streams[device]; ok {
		return s, nil
	}
	return DefaultStream(d.typ, device), nil
}

func (d *fakeDriver) SetCurrentStream(s Stream) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams[s.DeviceIndex()] = s
	d.ops = append(d.ops, fmt.Sprintf("stream=%s", s))
	return nil
}

func (d *fakeDriver) Synchronize(device int) error {
	d.mu.Lock()
	d.ops = append(d.ops, fmt.Sprintf("sync=%d", device))
	d.mu.Unlock()
	if d.syncFn != nil {
		return d.syncFn(device)
	}
	return nil
}

func (d *fakeDriver) opLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ops...)
}

// resetRuntime gives a test an empty registry and an unresolved selector,
// restoring the previous process state afterwards. Tests that call it
// must not run in parallel.
func resetRuntime(t *testing.T) {
	t.Helper()

	registryMu.Lock()
	prevDrivers := drivers
	drivers = make(map[DeviceType]*registeredDriver)
	registryMu.Unlock()

	selection.mu.Lock()
	prevResolved, prevActive := selection.resolved, selection.active
	selection.resolved = false
	selection.active = CPU
	selection.mu.Unlock()

	SetSchedulerGate(nil)

	t.Cleanup(func() {
		registryMu.Lock()
		drivers = prevDrivers
		registryMu.Unlock()

		selection.mu.Lock()
		selection.resolved, selection.active = prevResolved, prevActive
		selection.mu.Unlock()

		SetSchedulerGate(nil)
	})
}

func TestDeviceCountCPUFallback(t *testing.T) {
	resetRuntime(t)

	n, err := DeviceCount()
	if err != nil {
		t.Fatalf("DeviceCount() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("DeviceCount() = %d, want 0 under cpu fallback", n)
	}
}

func TestDeviceCountStable(t *testing.T) {
	resetRuntime(t)
	RegisterDriver(newFakeDriver(CUDA, 3))

	first, err := DeviceCount()
	if err != nil {
		t.Fatalf("DeviceCount() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		n, err := DeviceCount()
		if err != nil {
			t.Fatalf("DeviceCount() error = %v", err)
		}
		if n != first {
			t.Fatalf("DeviceCount() = %d on call %d, want %d", n, i+2, first)
		}
	}
}

func TestSetDeviceIndexNegativeIsNoOp(t *testing.T) {
	resetRuntime(t)
	d := newFakeDriver(CUDA, 2)
	RegisterDriver(d)

	if err := SetDeviceIndex(1); err != nil {
		t.Fatalf("SetDeviceIndex(1) error = %v", err)
	}
	for _, index := range []int{-1, -2, -100} {
		if err := SetDeviceIndex(index); err != nil {
			t.Fatalf("SetDeviceIndex(%d) error = %v, want nil no-op", index, err)
		}
		got, err := GetDeviceIndex()
		if err != nil {
			t.Fatalf("GetDeviceIndex() error = %v", err)
		}
		if got != 1 {
			t.Fatalf("GetDeviceIndex() = %d after SetDeviceIndex(%d), want 1", got, index)
		}
	}
}

func TestSetDeviceIndexNegativeStillNeedsAccelerator(t *testing.T) {
	resetRuntime(t)

	err := SetDeviceIndex(-1)
	if !errors.Is(err, ErrNoAccelerator) {
		t.Fatalf("SetDeviceIndex(-1) error = %v, want ErrNoAccelerator", err)
	}
}

func TestSetDeviceIndexOutOfRange(t *testing.T) {
	resetRuntime(t)
	RegisterDriver(newFakeDriver(CUDA, 2))

	err := SetDeviceIndex(2)
	if !errors.Is(err, ErrInvalidDeviceIndex) {
		t.Fatalf("SetDeviceIndex(2) error = %v, want ErrInvalidDeviceIndex", err)
	}
}

func TestGetDeviceIndexTriggersInit(t *testing.T) {
	resetRuntime(t)
	d := newFakeDriver(CUDA, 1)
	RegisterDriver(d)

	got, err := GetDeviceIndex()
	if err != nil {
		t.Fatalf("GetDeviceIndex() error = %v", err)
	}
	if got != 0 {
		t.Fatalf("GetDeviceIndex() = %d, want default 0", got)
	}
	if calls := d.initCalls.Load(); calls != 1 {
		t.Fatalf("Init() calls = %d after read, want 1", calls)
	}
	if !Initialized(CUDA) {
		t.Fatal("Initialized(CUDA) = false after GetDeviceIndex")
	}
}

func TestSetStreamSwitchesDeviceFirst(t *testing.T) {
	resetRuntime(t)
	d := newFakeDriver(CUDA, 2)
	RegisterDriver(d)

	if err := SetDeviceIndex(1); err != nil {
		t.Fatalf("SetDeviceIndex(1) error = %v", err)
	}

	s := NewStream(CUDA, 0, 0xbeef)
	if err := SetStream(s); err != nil {
		t.Fatalf("SetStream() error = %v", err)
	}

	got, err := GetDeviceIndex()
	if err != nil {
		t.Fatalf("GetDeviceIndex() error = %v", err)
	}
	if got != s.DeviceIndex() {
		t.Fatalf("GetDeviceIndex() = %d after SetStream, want %d", got, s.DeviceIndex())
	}

	cur, err := GetStream(0)
	if err != nil {
		t.Fatalf("GetStream(0) error = %v", err)
	}
	if cur != s {
		t.Fatalf("GetStream(0) = %v, want %v", cur, s)
	}

	// The device switch must land before the stream install.
	ops := d.opLog()
	want := []string{"device=1", "device=0", "stream=" + s.String()}
	if len(ops) != len(want) {
		t.Fatalf("driver ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("driver ops[%d] = %q, want %q (full log %v)", i, ops[i], want[i], ops)
		}
	}
}

func TestSetStreamSameDeviceDoesNotSwitch(t *testing.T) {
	resetRuntime(t)
	d := newFakeDriver(CUDA, 2)
	RegisterDriver(d)

	s := NewStream(CUDA, 0, 0x1)
	if err := SetStream(s); err != nil {
		t.Fatalf("SetStream() error = %v", err)
	}
	ops := d.opLog()
	if len(ops) != 1 || ops[0] != "stream="+s.String() {
		t.Fatalf("driver ops = %v, want a single stream install", ops)
	}
}

func TestSetStreamWrongType(t *testing.T) {
	resetRuntime(t)
	RegisterDriver(newFakeDriver(CUDA, 1))

	err := SetStream(NewStream(Metal, 0, 0x1))
	if !errors.Is(err, ErrInvalidStream) {
		t.Fatalf("SetStream() error = %v, want ErrInvalidStream", err)
	}
}

func TestGetStreamDefault(t *testing.T) {
	resetRuntime(t)
	RegisterDriver(newFakeDriver(CUDA, 2))

	s, err := GetStream(1)
	if err != nil {
		t.Fatalf("GetStream(1) error = %v", err)
	}
	if !s.IsDefault() {
		t.Fatalf("GetStream(1) = %v, want the default stream", s)
	}
	if s.DeviceIndex() != 1 || s.DeviceType() != CUDA {
		t.Fatalf("GetStream(1) = %v, want cuda:1/default", s)
	}
}

func TestSynchronizeUninitializedIsVacuous(t *testing.T) {
	resetRuntime(t)
	d := newFakeDriver(CUDA, 2)
	RegisterDriver(d)

	if err := SynchronizeDevice(0); err != nil {
		t.Fatalf("SynchronizeDevice(0) error = %v", err)
	}
	if calls := d.initCalls.Load(); calls != 0 {
		t.Fatalf("Init() calls = %d after vacuous synchronize, want 0", calls)
	}
	if Initialized(CUDA) {
		t.Fatal("Initialized(CUDA) = true after vacuous synchronize")
	}
	if ops := d.opLog(); len(ops) != 0 {
		t.Fatalf("driver ops = %v, want none", ops)
	}
}

func TestSynchronizeNoAccelerator(t *testing.T) {
	resetRuntime(t)

	err := SynchronizeDevice(0)
	if !errors.Is(err, ErrNoAccelerator) {
		t.Fatalf("SynchronizeDevice(0) error = %v, want ErrNoAccelerator", err)
	}
}

func TestSynchronizeBlocksAfterInit(t *testing.T) {
	resetRuntime(t)
	d := newFakeDriver(CUDA, 2)
	RegisterDriver(d)

	if _, err := GetDeviceIndex(); err != nil {
		t.Fatalf("GetDeviceIndex() error = %v", err)
	}
	if err := SynchronizeDevice(1); err != nil {
		t.Fatalf("SynchronizeDevice(1) error = %v", err)
	}
	ops := d.opLog()
	if len(ops) == 0 || ops[len(ops)-1] != "sync=1" {
		t.Fatalf("driver ops = %v, want trailing sync=1", ops)
	}
}

// gateRecorder is a sync.Locker that tracks whether it is held and every
// transition, so tests can assert the release/re-acquire bracket around
// the hardware wait.
type gateRecorder struct {
	mu     sync.Mutex
	held   bool
	events []string
}

func (g *gateRecorder) Lock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = true
	g.events = append(g.events, "lock")
}

func (g *gateRecorder) Unlock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
	g.events = append(g.events, "unlock")
}

func (g *gateRecorder) isHeld() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

func TestSynchronizeReleasesSchedulerGate(t *testing.T) {
	resetRuntime(t)
	d := newFakeDriver(CUDA, 1)
	RegisterDriver(d)

	gate := &gateRecorder{}
	SetSchedulerGate(gate)

	var heldDuringWait bool
	d.syncFn = func(int) error {
		heldDuringWait = gate.isHeld()
		return nil
	}

	if _, err := GetDeviceIndex(); err != nil {
		t.Fatalf("GetDeviceIndex() error = %v", err)
	}

	gate.Lock() // caller holds the host lock around the blocking call
	if err := SynchronizeDevice(0); err != nil {
		t.Fatalf("SynchronizeDevice(0) error = %v", err)
	}
	if heldDuringWait {
		t.Fatal("scheduler gate still held during the hardware wait")
	}
	if !gate.isHeld() {
		t.Fatal("scheduler gate not re-acquired after the wait")
	}
}

func TestSynchronizeReacquiresGateOnFailure(t *testing.T) {
	resetRuntime(t)
	d := newFakeDriver(CUDA, 1)
	RegisterDriver(d)

	gate := &gateRecorder{}
	SetSchedulerGate(gate)

	syncErr := errors.New("device wedged")
	d.syncFn = func(int) error { return syncErr }

	if _, err := GetDeviceIndex(); err != nil {
		t.Fatalf("GetDeviceIndex() error = %v", err)
	}

	gate.Lock()
	if err := SynchronizeDevice(0); !errors.Is(err, syncErr) {
		t.Fatalf("SynchronizeDevice(0) error = %v, want %v", err, syncErr)
	}
	if !gate.isHeld() {
		t.Fatal("scheduler gate not re-acquired after a failed wait")
	}
}

func TestSynchronizeUntouchedGateWhenVacuous(t *testing.T) {
	resetRuntime(t)
	RegisterDriver(newFakeDriver(CUDA, 1))

	gate := &gateRecorder{}
	SetSchedulerGate(gate)
	gate.Lock()

	if err := SynchronizeDevice(0); err != nil {
		t.Fatalf("SynchronizeDevice(0) error = %v", err)
	}
	gate.mu.Lock()
	events := append([]string(nil), gate.events...)
	gate.mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("gate events = %v, want only the caller's own lock", events)
	}
}

// The worked scenario: one backend with two devices.
func TestTwoDeviceScenario(t *testing.T) {
	resetRuntime(t)
	d := newFakeDriver(CUDA, 2)
	RegisterDriver(d)

	if err := SetDeviceIndex(1); err != nil {
		t.Fatalf("SetDeviceIndex(1) error = %v", err)
	}
	if got, _ := GetDeviceIndex(); got != 1 {
		t.Fatalf("GetDeviceIndex() = %d, want 1", got)
	}

	if err := SetDeviceIndex(-1); err != nil {
		t.Fatalf("SetDeviceIndex(-1) error = %v", err)
	}
	if got, _ := GetDeviceIndex(); got != 1 {
		t.Fatalf("GetDeviceIndex() = %d after no-op, want 1", got)
	}

	if err := SetStream(DefaultStream(CUDA, 0)); err != nil {
		t.Fatalf("SetStream() error = %v", err)
	}
	if got, _ := GetDeviceIndex(); got != 0 {
		t.Fatalf("GetDeviceIndex() = %d after stream on device 0, want 0", got)
	}
}
