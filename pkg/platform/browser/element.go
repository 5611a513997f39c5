//go:build js && wasm

// ABOUTME: Browser media element
// ABOUTME: Wraps an HTMLMediaElement and forwards its lifecycle events
package browser

import (
	"context"
	"fmt"
	"math"
	"sync"
	"syscall/js"

	"github.com/Resonate-Protocol/volumekit/pkg/media"
)

// readBackTolerance absorbs float rounding in the volume property
const readBackTolerance = 1e-3

// Element wraps an HTMLMediaElement
type Element struct {
	media.Observers

	v         js.Value
	listeners map[media.EventType]js.Func

	mu       sync.Mutex
	captured bool
	released bool
}

var _ media.Element = (*Element)(nil)

// NewElement wraps v, which must be an HTMLMediaElement
func NewElement(v js.Value) (*Element, error) {
	ctor := js.Global().Get("HTMLMediaElement")
	if !truthy(v) || (truthy(ctor) && !v.InstanceOf(ctor)) {
		return nil, fmt.Errorf("value is not an HTMLMediaElement")
	}

	e := &Element{
		v:         v,
		listeners: make(map[media.EventType]js.Func),
	}

	for _, t := range []media.EventType{media.EventPlay, media.EventPause, media.EventEnded} {
		t := t
		fn := js.FuncOf(func(this js.Value, args []js.Value) any {
			e.Emit(t)
			return nil
		})
		e.listeners[t] = fn
		v.Call("addEventListener", string(t), fn)
	}

	return e, nil
}

// Value returns the wrapped HTMLMediaElement
func (e *Element) Value() js.Value {
	return e.v
}

// Play calls play() and waits for the returned promise
func (e *Element) Play(ctx context.Context) error {
	promise, err := call(e.v, "play")
	if err != nil {
		return err
	}
	_, err = await(ctx, promise)
	return err
}

// Pause calls pause()
func (e *Element) Pause() error {
	_, err := call(e.v, "pause")
	return err
}

// SetVolume assigns the volume property. iOS ignores the assignment without
// throwing, so the value is read back to detect it.
func (e *Element) SetVolume(v float64) error {
	if err := set(e.v, "volume", v); err != nil {
		return fmt.Errorf("%w: %v", media.ErrVolumeReadOnly, err)
	}
	if got := e.Volume(); math.Abs(got-v) > readBackTolerance {
		return media.ErrVolumeReadOnly
	}
	return nil
}

// Volume returns the volume property
func (e *Element) Volume() float64 {
	vol := e.v.Get("volume")
	if vol.Type() != js.TypeNumber {
		return 0
	}
	return vol.Float()
}

// Release removes the DOM listeners. The element is not usable afterwards.
func (e *Element) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		return
	}
	e.released = true

	for t, fn := range e.listeners {
		e.v.Call("removeEventListener", string(t), fn)
		fn.Release()
	}
}

func (e *Element) capture() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.captured {
		return false
	}
	e.captured = true
	return true
}
