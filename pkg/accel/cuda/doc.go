// Package cuda provides the CUDA backend driver for accel.
//
// The real driver is compiled only with the cuda build tag and links
// against libcudart. Importing the package registers the driver:
//
//	import _ "github.com/samcharles93/accel/pkg/accel/cuda"
//
// Without the tag the package compiles to a stub that registers nothing,
// so the process falls back to the next compiled backend or the CPU.
package cuda
