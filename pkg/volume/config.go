// ABOUTME: Volume controller configuration
// ABOUTME: Initial volume, debug logging, and caller callbacks
package volume

import (
	"fmt"
	"log/slog"
)

// DefaultVolume is the initial volume used when Config.InitialVolume is nil
const DefaultVolume = 50

// Config holds controller configuration. It is copied at construction.
type Config struct {
	// InitialVolume in percent, 0-100 (default: 50)
	InitialVolume *int

	// Debug enables logging of the happy and failure paths
	Debug bool

	// Logger receives debug output (default: slog.Default())
	Logger *slog.Logger

	// OnVolumeChange is called with the requested percent after every
	// SetVolume, and with 0 or the restored percent after Mute
	OnVolumeChange func(percent float64)

	// OnReady is called once the processing graph is built
	OnReady func()

	// OnError is called with a wrapped error and the underlying cause
	OnError func(err error, cause error)
}

// Percent returns a pointer to p, for Config.InitialVolume
func Percent(p int) *int {
	return &p
}

// withDefaults validates the config and fills in defaults
func (c Config) withDefaults() (Config, error) {
	if c.InitialVolume == nil {
		c.InitialVolume = Percent(DefaultVolume)
	}
	if v := *c.InitialVolume; v < 0 || v > 100 {
		return c, fmt.Errorf("%w: initial volume %d outside [0, 100]", ErrInvalidArgument, v)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c, nil
}
