// ABOUTME: Volume controller error values
// ABOUTME: Contract violations and platform failures
package volume

import "errors"

var (
	// ErrInvalidArgument reports a contract violation by the caller
	ErrInvalidArgument = errors.New("volume: invalid argument")

	// ErrUnsupportedPlatform reports that no processing graph can be built
	ErrUnsupportedPlatform = errors.New("volume: processing graph not supported on this platform")

	// ErrDestroyed is returned by operations on a destroyed controller
	ErrDestroyed = errors.New("volume: controller destroyed")
)
