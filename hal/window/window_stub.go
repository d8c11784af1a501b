//go:build !cgo

package window

import (
	"errors"

	"inkpad/hal"
)

// Config controls the desktop window.
type Config struct {
	Title         string
	Width, Height int
	Scale         float64
	TPS           int
	Logger        hal.Logger
}

// DeviceScale reports 1 without the window backend.
func DeviceScale() float64 { return 1 }

func Run(_ Config, _ func(hal.HAL) (hal.App, error)) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
