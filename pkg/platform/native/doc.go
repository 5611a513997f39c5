// ABOUTME: Native platform backend
// ABOUTME: Desktop playback through oto with a software gain graph
// Package native implements platform.Provider for desktop targets.
//
// Elements play decoded sources through a shared oto context. The element
// volume property maps to the oto player's volume; Options.ReadOnlyVolume
// makes it reject assignments the way iOS Safari does, which is useful for
// exercising the gain path on a desktop.
//
// Processing graphs are software: a source node taps the element's sample
// stream and a gain node scales it before it reaches the oto player. A
// context that is not running silences every element routed into it.
//
// Example:
//
//	p := native.New(native.Options{SampleRate: 44100})
//	src, err := decode.Open("track.mp3")
//	el, err := p.NewElement(src)
//	defer el.Close()
package native
