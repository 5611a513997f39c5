//go:build !(js && wasm)

// ABOUTME: Native provider selection
// ABOUTME: Default returns an oto-backed provider
package auto

import (
	"github.com/Resonate-Protocol/volumekit/pkg/platform"
	"github.com/Resonate-Protocol/volumekit/pkg/platform/native"
)

// Default returns the native provider with default options
func Default() platform.Provider {
	return native.New(native.Options{})
}
