// ABOUTME: Volume controller package
// ABOUTME: Normalizes volume control across writable and read-only platforms
// Package volume wraps a single media element and keeps its volume under
// control on every platform.
//
// Where the element's volume property is writable, SetVolume assigns it
// directly. Where it is read-only (iOS Safari), the controller builds a
// processing graph (source -> gain -> destination) on Initialize and routes
// all volume changes to the gain node from then on. Graph construction must
// follow a user gesture on platforms with an autoplay policy, so it happens
// lazily on Initialize or on the first Play.
//
// The graph is built at most once per element and cannot be rebuilt: wiring
// an element into a graph is permanent on every supported platform.
//
// Example:
//
//	ctrl, err := volume.New(el, auto.Default(), volume.Config{
//	    InitialVolume:  volume.Percent(30),
//	    OnVolumeChange: func(p float64) { log.Printf("volume %.0f%%", p) },
//	})
//	if err != nil {
//	    return err
//	}
//	defer ctrl.Destroy()
//
//	ctrl.Initialize(ctx)
//	err = ctrl.SetVolume(75)
//	err = ctrl.Play(ctx)
package volume
