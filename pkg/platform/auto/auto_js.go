//go:build js && wasm

// ABOUTME: Browser provider selection
// ABOUTME: Default returns the Web Audio provider
package auto

import (
	"github.com/Resonate-Protocol/volumekit/pkg/platform"
	"github.com/Resonate-Protocol/volumekit/pkg/platform/browser"
)

// Default returns the browser provider bound to the global window
func Default() platform.Provider {
	return browser.New()
}
