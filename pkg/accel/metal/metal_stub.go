//go:build !metal || !darwin

package metal

import "errors"

const enabled = false

// Enabled reports whether the Metal driver is compiled into this binary.
func Enabled() bool { return enabled }

var errUnavailable = errors.New("metal: driver not built (requires darwin and -tags metal)")

// Driver is unavailable without the metal build tag on darwin.
type Driver struct{}

// New reports that the Metal driver is not compiled into this binary.
func New() (*Driver, error) {
	return nil, errUnavailable
}
