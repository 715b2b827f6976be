// Package api exposes the process accelerator state over HTTP so
// operators can inspect and drive it without attaching a debugger.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/accel/internal/hostmem"
	"github.com/samcharles93/accel/pkg/accel"
)

type Server struct {
	rt       Runtime
	clock    func() time.Time
	syncRate *rate.Limiter
}

func NewServer(rt Runtime) *Server {
	if rt == nil {
		rt = ProcessRuntime{}
	}
	return &Server{
		rt:    rt,
		clock: time.Now,
		// Synchronize blocks the handler for a hardware-dependent time;
		// keep callers from piling those up.
		syncRate: rate.NewLimiter(rate.Every(time.Second), 4),
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/accelerator", s.handleAccelerator)
	e.GET("/v1/devices", s.handleListDevices)
	e.PUT("/v1/devices/current", s.handleSelectDevice)
	e.POST("/v1/devices/:index/synchronize", s.handleSynchronize)
}

func (s *Server) handleAccelerator(c *echo.Context) error {
	t, _ := s.rt.Accelerator(false)

	compiled := make([]string, 0, 2)
	for _, ct := range s.rt.RegisteredTypes() {
		compiled = append(compiled, ct.String())
	}

	resp := AcceleratorResp{
		Type:     t.String(),
		Compiled: compiled,
	}
	if t == accel.CPU {
		mem := hostmem.Probe()
		resp.HostMemory = &mem
		return c.JSON(http.StatusOK, resp)
	}

	// DeviceCount initializes the driver on first use, so query the
	// initialized flag after it.
	n, err := s.rt.DeviceCount()
	if err != nil {
		return writeAccelError(c, err)
	}
	resp.DeviceCount = n
	resp.Initialized = s.rt.Initialized(t)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListDevices(c *echo.Context) error {
	n, err := s.rt.DeviceCount()
	if err != nil {
		return writeAccelError(c, err)
	}
	if n == 0 {
		return c.JSON(http.StatusOK, []DeviceEntry{})
	}

	current, err := s.rt.GetDeviceIndex()
	if err != nil {
		return writeAccelError(c, err)
	}

	entries := make([]DeviceEntry, 0, n)
	for i := 0; i < n; i++ {
		stream, err := s.rt.GetStream(i)
		if err != nil {
			return writeAccelError(c, err)
		}
		entries = append(entries, DeviceEntry{
			Index:   i,
			Current: i == current,
			Stream:  stream.String(),
		})
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) handleSelectDevice(c *echo.Context) error {
	req, err := decodeJSON[SelectDeviceReq](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Index == nil {
		return writeBadRequest(c, "index is required")
	}

	if err := s.rt.SetDeviceIndex(*req.Index); err != nil {
		return writeAccelError(c, err)
	}

	// A negative index is the documented "leave it alone" no-op; report
	// the device that is actually current either way.
	current, err := s.rt.GetDeviceIndex()
	if err != nil {
		return writeAccelError(c, err)
	}
	return c.JSON(http.StatusOK, SelectDeviceResp{
		Index:   current,
		Changed: *req.Index >= 0,
	})
}

func (s *Server) handleSynchronize(c *echo.Context) error {
	if !s.syncRate.Allow() {
		return writeError(c, http.StatusTooManyRequests, "rate_limited", "too many synchronize requests")
	}

	device, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return writeBadRequest(c, "device index must be an integer")
	}

	start := s.clock()
	if err := s.rt.SynchronizeDevice(device); err != nil {
		return writeAccelError(c, err)
	}
	return c.JSON(http.StatusOK, SyncResp{
		ID:         uuid.NewString(),
		Device:     device,
		DurationMS: float64(s.clock().Sub(start)) / float64(time.Millisecond),
	})
}
