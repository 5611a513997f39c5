// ABOUTME: Browser platform backend
// ABOUTME: HTMLMediaElement and Web Audio bindings for js/wasm builds
// Package browser implements platform.Provider for GOOS=js GOARCH=wasm.
//
// Elements wrap an HTMLMediaElement. Graph contexts wrap an AudioContext
// (or webkitAudioContext on older Safari). On iOS Safari the element's
// volume property is read-only: assignments are silently ignored, which
// SetVolume detects by reading the property back.
//
// Example:
//
//	el, err := browser.NewElement(js.Global().Get("document").Call("getElementById", "player"))
//	ctrl, err := volume.New(el, browser.New(), volume.Config{})
package browser
