//go:build !(js && wasm)

// ABOUTME: Tests for provider selection
// ABOUTME: Native builds return the native provider without opening a device
package auto

import (
	"testing"

	"github.com/Resonate-Protocol/volumekit/pkg/platform/native"
)

func TestDefaultIsNative(t *testing.T) {
	p := Default()
	if _, ok := p.(*native.Platform); !ok {
		t.Fatalf("expected *native.Platform, got %T", p)
	}
	if !p.SupportsGraphAPI() {
		t.Error("expected native provider to support the graph API")
	}
}
