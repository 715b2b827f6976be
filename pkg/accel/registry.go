package accel

import "sync"

// registry holds the drivers compiled into this binary.
var (
	registryMu sync.RWMutex
	drivers    = make(map[DeviceType]*registeredDriver)
	// Priority order for accelerator selection (first probe success wins).
	driverPriority = []DeviceType{CUDA, Metal}
)

// registeredDriver pairs a driver with its initialization guard.
type registeredDriver struct {
	driver Driver
	guard  initGuard
}

// RegisterDriver registers a compiled-in backend driver. Driver packages
// call this from init(); registering a driver for an already-registered
// type replaces it, which tests rely on.
func RegisterDriver(d Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	drivers[d.Type()] = &registeredDriver{driver: d}
}

// RegisteredTypes returns the backend types compiled into this binary, in
// selection priority order.
func RegisteredTypes() []DeviceType {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]DeviceType, 0, len(drivers))
	for _, t := range driverPriority {
		if _, ok := drivers[t]; ok {
			types = append(types, t)
		}
	}
	return types
}

func lookupDriver(t DeviceType) *registeredDriver {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return drivers[t]
}
