//go:build js && wasm

// ABOUTME: Browser capability provider
// ABOUTME: Feature detection over window, navigator, and document
package browser

import (
	"fmt"
	"syscall/js"

	"github.com/Resonate-Protocol/volumekit/pkg/graph"
	"github.com/Resonate-Protocol/volumekit/pkg/platform"
)

// Platform is the browser capability provider
type Platform struct {
	window js.Value
}

// New creates a provider bound to the global window
func New() *Platform {
	return &Platform{window: js.Global()}
}

func (p *Platform) audioContextConstructor() js.Value {
	if ctor := p.window.Get("AudioContext"); truthy(ctor) {
		return ctor
	}
	return p.window.Get("webkitAudioContext")
}

// SupportsGraphAPI reports whether AudioContext or webkitAudioContext exists
func (p *Platform) SupportsGraphAPI() bool {
	return truthy(p.audioContextConstructor())
}

// SupportsStandardGraphAPI reports whether the unprefixed AudioContext exists
func (p *Platform) SupportsStandardGraphAPI() bool {
	return truthy(p.window.Get("AudioContext"))
}

// IsIOSLike matches navigator.userAgent against iOS devices
func (p *Platform) IsIOSLike() bool {
	nav := p.window.Get("navigator")
	if !truthy(nav) {
		return false
	}
	return platform.IsIOSUserAgent(nav.Get("userAgent").String())
}

// ProbeVolumeWritability reports whether a throwaway audio element defines volume
func (p *Platform) ProbeVolumeWritability() bool {
	doc := p.window.Get("document")
	if !truthy(doc) {
		return false
	}
	el, err := call(doc, "createElement", "audio")
	if err != nil {
		return false
	}
	return !el.Get("volume").IsUndefined()
}

// NewGraphContext constructs an AudioContext
func (p *Platform) NewGraphContext() (graph.Context, error) {
	ctor := p.audioContextConstructor()
	if !truthy(ctor) {
		return nil, fmt.Errorf("AudioContext not available")
	}

	v, err := construct(ctor)
	if err != nil {
		return nil, fmt.Errorf("failed to construct AudioContext: %w", err)
	}

	c := &graphContext{v: v}
	c.dest = &node{ctx: c, v: v.Get("destination")}
	return c, nil
}

func construct(ctor js.Value) (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	return ctor.New(), nil
}
