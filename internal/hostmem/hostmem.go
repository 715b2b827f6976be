// Package hostmem reports host memory for the CPU-fallback device report.
// When no accelerator is active there is no VRAM to describe, so the info
// surfaces report system memory instead.
package hostmem

// Report holds host memory sizes in bytes. A zero Report means the
// platform probe is not implemented.
type Report struct {
	Total uint64 `json:"total"`
	Free  uint64 `json:"free"`
}

// Probe returns the host memory report for the current platform.
func Probe() Report {
	return probe()
}
