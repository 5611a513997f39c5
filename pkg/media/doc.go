// ABOUTME: Media handle package
// ABOUTME: Defines the playable element contract wrapped by the volume controller
// Package media describes a single playable audio resource.
//
// An Element is supplied by a platform backend (see pkg/platform/native and
// pkg/platform/browser) and exposes start/stop requests, a volume property
// that may be read-only on some platforms, and lifecycle notifications.
//
// Example:
//
//	off := el.On(media.EventEnded, func(ev media.Event) {
//	    log.Printf("finished")
//	})
//	defer off()
//	err := el.Play(ctx)
package media
