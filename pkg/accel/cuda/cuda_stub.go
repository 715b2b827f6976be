//go:build !cuda

package cuda

import "errors"

const enabled = false

// Enabled reports whether the CUDA driver is compiled into this binary.
func Enabled() bool { return enabled }

var errUnavailable = errors.New("cuda: driver not built (rebuild with -tags cuda)")

// Driver is unavailable without the cuda build tag.
type Driver struct{}

// New reports that the CUDA driver is not compiled into this binary.
func New() (*Driver, error) {
	return nil, errUnavailable
}
