// Package metal provides the Metal backend driver for accel.
//
// The real driver is compiled only on darwin with the metal build tag and
// links against the Metal framework. Importing the package registers the
// driver:
//
//	import _ "github.com/samcharles93/accel/pkg/accel/metal"
//
// Elsewhere the package compiles to a stub that registers nothing.
package metal
