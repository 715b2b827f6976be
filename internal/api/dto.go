package api

import "github.com/samcharles93/accel/internal/hostmem"

type AcceleratorResp struct {
	Type        string          `json:"type"`
	Compiled    []string        `json:"compiled_backends"`
	Initialized bool            `json:"initialized"`
	DeviceCount int             `json:"device_count"`
	HostMemory  *hostmem.Report `json:"host_memory,omitempty"`
}

type DeviceEntry struct {
	Index   int    `json:"index"`
	Current bool   `json:"current"`
	Stream  string `json:"stream"`
}

type SelectDeviceReq struct {
	Index *int `json:"index"`
}

type SelectDeviceResp struct {
	Index   int  `json:"index"`
	Changed bool `json:"changed"`
}

type SyncResp struct {
	ID         string  `json:"id"`
	Device     int     `json:"device"`
	DurationMS float64 `json:"duration_ms"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
