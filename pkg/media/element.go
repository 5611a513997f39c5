// ABOUTME: Media element interface and lifecycle events
// ABOUTME: Common contract for platform playback handles
package media

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrAborted reports a start request interrupted by a later stop request.
	// It is benign: the interruption was intentional.
	ErrAborted = errors.New("media: playback request aborted")

	// ErrVolumeReadOnly reports that the platform refused a volume assignment.
	ErrVolumeReadOnly = errors.New("media: volume property is read-only")

	// ErrClosed is returned by elements whose resources were released.
	ErrClosed = errors.New("media: element closed")
)

// IsAbort reports whether err is a benign abort.
func IsAbort(err error) bool {
	return errors.Is(err, ErrAborted)
}

// EventType identifies a playback lifecycle signal
type EventType string

const (
	EventPlay  EventType = "play"
	EventPause EventType = "pause"
	EventEnded EventType = "ended"
)

// Event is delivered to observers registered with Element.On
type Event struct {
	Type EventType
}

// Element represents a single playable audio resource
type Element interface {
	// Play issues a start request and blocks until the platform settles it
	Play(ctx context.Context) error

	// Pause issues a stop request
	Pause() error

	// SetVolume assigns the volume property (0.0 to 1.0).
	// Platforms with a read-only property return ErrVolumeReadOnly.
	SetVolume(volume float64) error

	// Volume returns the volume property as reported by the platform
	Volume() float64

	// On registers an observer and returns a function removing it
	On(t EventType, fn func(Event)) (off func())
}

// Observers is a small registry backends embed to implement Element.On
type Observers struct {
	mu     sync.Mutex
	nextID int
	fns    map[EventType]map[int]func(Event)
}

// On registers fn for events of type t
func (o *Observers) On(t EventType, fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fns == nil {
		o.fns = make(map[EventType]map[int]func(Event))
	}
	if o.fns[t] == nil {
		o.fns[t] = make(map[int]func(Event))
	}

	id := o.nextID
	o.nextID++
	o.fns[t][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.fns[t], id)
			o.mu.Unlock()
		})
	}
}

// Emit delivers an event to every observer of its type.
// Observers run on the caller's goroutine without the registry lock held.
func (o *Observers) Emit(t EventType) {
	o.mu.Lock()
	fns := make([]func(Event), 0, len(o.fns[t]))
	for _, fn := range o.fns[t] {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	ev := Event{Type: t}
	for _, fn := range fns {
		fn(ev)
	}
}

// Count returns the number of registered observers for t
func (o *Observers) Count(t EventType) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.fns[t])
}
