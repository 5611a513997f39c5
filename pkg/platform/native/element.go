// ABOUTME: Native media element
// ABOUTME: Streams a decoded source to an oto player through an optional gain tap
package native

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
	"github.com/Resonate-Protocol/volumekit/pkg/graph"
	"github.com/Resonate-Protocol/volumekit/pkg/media"
)

// endPollInterval is how often the end watcher checks the player drained
const endPollInterval = 20 * time.Millisecond

// Element plays one decoded source
type Element struct {
	media.Observers

	src      audio.Source
	player   player
	readOnly bool

	mu      sync.Mutex
	route   *sourceNode // set once when wired into a graph
	ended   bool
	closed  bool
	samples []float32
}

var _ media.Element = (*Element)(nil)

func newElement(src audio.Source, dev device, readOnly bool) *Element {
	e := &Element{
		src:      src,
		readOnly: readOnly,
	}
	e.player = dev.NewPlayer(&elementReader{e: e})
	return e
}

// Format returns the format of the decoded source
func (e *Element) Format() audio.Format {
	return e.src.Format()
}

// Play starts or resumes playback
func (e *Element) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	closed, ended := e.closed, e.ended
	e.mu.Unlock()

	if closed {
		return media.ErrClosed
	}
	if ended {
		return nil
	}

	e.player.Play()
	if err := e.player.Err(); err != nil {
		return err
	}

	e.Emit(media.EventPlay)
	return nil
}

// Pause pauses playback
func (e *Element) Pause() error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()

	if closed {
		return media.ErrClosed
	}

	e.player.Pause()
	e.Emit(media.EventPause)
	return e.player.Err()
}

// SetVolume assigns the player volume
func (e *Element) SetVolume(v float64) error {
	if e.readOnly {
		return media.ErrVolumeReadOnly
	}
	e.player.SetVolume(v)
	return nil
}

// Volume returns the player volume
func (e *Element) Volume() float64 {
	return e.player.Volume()
}

// Playing reports whether the player is producing audio
func (e *Element) Playing() bool {
	return e.player.IsPlaying()
}

// Close stops playback and releases the player and source
func (e *Element) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	err := e.player.Close()
	if serr := e.src.Close(); err == nil {
		err = serr
	}
	return err
}

// capture wires the element into a graph. Wiring is permanent.
func (e *Element) capture(s *sourceNode) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.route != nil {
		return graph.ErrSourceInUse
	}
	e.route = s
	return nil
}

// routeGain returns the gain applied by the graph, or 1 when unrouted
func (e *Element) routeGain() float64 {
	e.mu.Lock()
	route := e.route
	e.mu.Unlock()

	if route == nil {
		return 1
	}
	return route.effectiveGain()
}

// read fills p with float32 little-endian frames for the player
func (e *Element) read(p []byte) (int, error) {
	count := len(p) / 4
	if count == 0 {
		return 0, nil
	}

	if cap(e.samples) < count {
		e.samples = make([]float32, count)
	}
	samples := e.samples[:count]

	n, err := e.src.ReadSamples(samples)
	audio.ApplyGain(samples[:n], e.routeGain())

	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(samples[i]))
	}

	if err == io.EOF && n == 0 {
		e.markEnded()
		return 0, io.EOF
	}
	if err != nil && err != io.EOF {
		return n * 4, err
	}
	return n * 4, nil
}

// markEnded records end of stream and emits ended once the player drains
func (e *Element) markEnded() {
	e.mu.Lock()
	if e.ended {
		e.mu.Unlock()
		return
	}
	e.ended = true
	e.mu.Unlock()

	go func() {
		for e.player.IsPlaying() {
			time.Sleep(endPollInterval)
		}
		e.Emit(media.EventEnded)
	}()
}

// elementReader keeps Read off the exported API
type elementReader struct {
	e *Element
}

func (r *elementReader) Read(p []byte) (int, error) {
	return r.e.read(p)
}
