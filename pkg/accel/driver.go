package accel

// Driver is the capability set a backend must implement to participate in
// accelerator selection. One implementation exists per DeviceType, gated
// behind its build tag, and registers itself via RegisterDriver from an
// init function.
//
// Probe must stay cheap: it answers "is this hardware present" without
// acquiring driver resources. Everything else may assume Init has
// succeeded; the policy layer guarantees that ordering.
type Driver interface {
	// Type returns the backend kind this driver implements.
	Type() DeviceType

	// Probe reports whether the backend's hardware is present. It must
	// not initialize the driver.
	Probe() bool

	// Init performs the one-time driver setup. The policy layer calls it
	// at most once concurrently and retries after a failure.
	Init() error

	// DeviceCount returns the number of usable devices.
	DeviceCount() int

	// CurrentDeviceIndex returns the device subsequent work targets for
	// the calling context.
	CurrentDeviceIndex() (int, error)

	// SetCurrentDeviceIndex switches the calling context to the device.
	// The index has already been validated against DeviceCount.
	SetCurrentDeviceIndex(index int) error

	// CurrentStream returns the stream current on the device, or the
	// device's default stream if none was installed.
	CurrentStream(device int) (Stream, error)

	// SetCurrentStream installs the stream as current on the device it
	// was created on. The current device already matches the stream's
	// device when this is called.
	SetCurrentStream(s Stream) error

	// Synchronize blocks until all work enqueued on the device's streams
	// has completed. It is the only driver call allowed to block for a
	// hardware-dependent duration.
	Synchronize(device int) error
}
