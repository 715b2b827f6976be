package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/accel/pkg/accel"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}

// writeAccelError maps policy-layer errors onto HTTP statuses: no
// accelerator is a 503 (the deployment lacks the hardware), a bad index
// is the caller's fault, and an init failure is a retryable 500.
func writeAccelError(c *echo.Context, err error) error {
	var initErr *accel.InitError
	switch {
	case errors.Is(err, accel.ErrNoAccelerator):
		return writeError(c, http.StatusServiceUnavailable, "no_accelerator", err.Error())
	case errors.Is(err, accel.ErrInvalidDeviceIndex), errors.Is(err, accel.ErrInvalidStream):
		return writeBadRequest(c, err.Error())
	case errors.As(err, &initErr):
		return writeError(c, http.StatusInternalServerError, "initialization_failed", err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
