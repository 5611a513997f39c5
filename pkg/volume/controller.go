// ABOUTME: Volume controller implementation
// ABOUTME: Routes volume to a gain node or the element property, serializes play and pause
package volume

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"sync"

	"github.com/Resonate-Protocol/volumekit/pkg/graph"
	"github.com/Resonate-Protocol/volumekit/pkg/media"
	"github.com/Resonate-Protocol/volumekit/pkg/platform"
)

// Status is a snapshot of controller state
type Status struct {
	Volume      int
	Muted       bool
	GraphBuilt  bool
	Initialized bool
	Destroyed   bool
	Phase       Phase
}

// Controller normalizes volume control for a single media element
type Controller struct {
	config   Config
	element  media.Element
	provider platform.Provider
	logger   *slog.Logger

	mu          sync.Mutex
	fraction    float64
	requested   float64 // percent as last passed in, for callbacks
	muted       bool
	graphCtx    graph.Context
	gain        graph.GainNode
	graphBuilt  bool
	building    chan struct{} // closed when an in-flight graph build finishes
	initialized bool
	destroyed   bool
	observers   []func()

	guard playbackGuard
}

// New creates a controller bound to el. The element is referenced, not owned.
func New(el media.Element, provider platform.Provider, config Config) (*Controller, error) {
	if isNil(el) {
		return nil, fmt.Errorf("%w: media element is required", ErrInvalidArgument)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: platform provider is required", ErrInvalidArgument)
	}

	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		config:    config,
		element:   el,
		provider:  provider,
		logger:    config.Logger.With(slog.String("component", "volume")),
		fraction:  float64(*config.InitialVolume) / 100,
		requested: float64(*config.InitialVolume),
	}

	for _, t := range []media.EventType{media.EventPlay, media.EventPause, media.EventEnded} {
		t := t
		c.observers = append(c.observers, el.On(t, func(media.Event) {
			c.debug("media event", slog.String("event", string(t)))
		}))
	}

	c.debug("controller created", slog.Int("volume", *config.InitialVolume))

	return c, nil
}

// Initialize builds the processing graph. It must follow a user gesture on
// platforms with an autoplay policy. Failures are reported through OnError
// and the return value; the controller stays usable through direct volume
// assignment.
//
// The graph is constructed without holding the state lock, so volume reads
// and writes proceed while the platform opens its device. Concurrent callers
// wait for the build in flight and share its outcome.
func (c *Controller) Initialize(ctx context.Context) bool {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return true
	}

	if pending := c.building; pending != nil {
		c.mu.Unlock()
		select {
		case <-pending:
		case <-ctx.Done():
			c.reportError("initialize", ctx.Err())
			return false
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.initialized
	}

	var err error
	switch {
	case c.destroyed:
		err = ErrDestroyed
	case ctx.Err() != nil:
		err = ctx.Err()
	}
	if err != nil {
		c.mu.Unlock()
		c.reportError("initialize", err)
		return false
	}

	done := make(chan struct{})
	c.building = done
	seed := c.appliedLocked()
	c.mu.Unlock()

	gctx, gain, err := c.buildGraph(seed)

	c.mu.Lock()
	c.building = nil
	close(done)
	if err == nil && c.destroyed {
		err = ErrDestroyed
	}
	if err == nil {
		c.graphCtx = gctx
		c.gain = gain
		c.graphBuilt = true
		c.initialized = true
		// Volume may have moved while the graph was under construction
		c.applyLocked()
	}
	c.mu.Unlock()

	if err != nil {
		if gctx != nil {
			gctx.Close()
		}
		c.reportError("initialize", err)
		return false
	}

	c.debug("initialized, gain node is authoritative")
	if c.config.OnReady != nil {
		c.config.OnReady()
	}
	return true
}

// buildGraph wires element -> gain -> destination. The caller publishes the result.
func (c *Controller) buildGraph(seed float64) (graph.Context, graph.GainNode, error) {
	if !c.provider.SupportsGraphAPI() {
		return nil, nil, ErrUnsupportedPlatform
	}

	gctx, err := c.provider.NewGraphContext()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create processing context: %w", err)
	}

	gain, err := gctx.CreateGain(seed)
	if err != nil {
		gctx.Close()
		return nil, nil, fmt.Errorf("failed to create gain node: %w", err)
	}

	src, err := gctx.CreateMediaElementSource(c.element)
	if err != nil {
		gctx.Close()
		return nil, nil, fmt.Errorf("failed to create source node: %w", err)
	}

	if err := src.Connect(gain); err != nil {
		gctx.Close()
		return nil, nil, fmt.Errorf("failed to connect source to gain: %w", err)
	}
	if err := gain.Connect(gctx.Destination()); err != nil {
		gctx.Close()
		return nil, nil, fmt.Errorf("failed to connect gain to destination: %w", err)
	}

	c.debug("processing graph built", slog.String("state", string(gctx.State())))
	return gctx, gain, nil
}

// SetVolume sets the volume in percent (0-100). Out-of-range and non-finite
// values return ErrInvalidArgument and leave state unchanged.
//
// Without a processing graph the element property is assigned directly. A
// platform that rejects the assignment is logged and otherwise ignored, so
// the change is inaudible until the graph is built.
func (c *Controller) SetVolume(percent float64) error {
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent < 0 || percent > 100 {
		return fmt.Errorf("%w: volume %v outside [0, 100]", ErrInvalidArgument, percent)
	}

	c.mu.Lock()
	c.fraction = percent / 100
	c.requested = percent
	c.applyLocked()
	c.mu.Unlock()

	if c.config.OnVolumeChange != nil {
		c.config.OnVolumeChange(percent)
	}
	return nil
}

// Volume returns the desired volume in percent
func (c *Controller) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.percentLocked()
}

// Step adds delta percent to the volume, clamped to [0, 100]
func (c *Controller) Step(delta int) error {
	v := c.Volume() + delta
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return c.SetVolume(float64(v))
}

// Mute silences output without changing the desired volume. OnVolumeChange
// receives 0 when muting and the restored percent when unmuting.
func (c *Controller) Mute(muted bool) {
	c.mu.Lock()
	c.muted = muted
	c.applyLocked()
	audible := c.requested
	c.mu.Unlock()

	c.debug("mute changed", slog.Bool("muted", muted))

	if muted {
		audible = 0
	}
	if c.config.OnVolumeChange != nil {
		c.config.OnVolumeChange(audible)
	}
}

// Muted returns the mute state
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Controller) percentLocked() int {
	return int(math.Round(c.fraction * 100))
}

func (c *Controller) appliedLocked() float64 {
	if c.muted {
		return 0
	}
	return c.fraction
}

// applyLocked pushes the applied volume to the gain node or the element
func (c *Controller) applyLocked() {
	if c.destroyed {
		return
	}

	v := c.appliedLocked()
	if c.graphBuilt {
		c.gain.SetGain(v)
		c.debug("gain updated", slog.Float64("gain", v))
		return
	}

	if err := c.element.SetVolume(v); err != nil {
		c.debug("direct volume assignment rejected", slog.Float64("volume", v), slog.Any("error", err))
		return
	}
	c.debug("element volume updated", slog.Float64("volume", v))
}

// Play starts playback, initializing first if needed. A suspended processing
// context is resumed before the start request. Any outstanding start or stop
// settles before a new start is issued.
//
// Every failure is returned. Benign aborts (a later Pause interrupting this
// start) are not reported through OnError.
func (c *Controller) Play(ctx context.Context) error {
	c.mu.Lock()
	destroyed, initialized := c.destroyed, c.initialized
	c.mu.Unlock()

	if destroyed {
		return ErrDestroyed
	}
	if !initialized && !c.Initialize(ctx) {
		c.debug("initialization failed, playing through direct volume path")
	}

	c.mu.Lock()
	gctx := c.graphCtx
	c.mu.Unlock()

	if gctx != nil && gctx.State() == graph.StateSuspended {
		if err := gctx.Resume(ctx); err != nil {
			err = fmt.Errorf("failed to resume processing context: %w", err)
			c.reportError("play", err)
			return err
		}
		c.debug("processing context resumed")
	}

	release, err := c.guard.acquire(ctx, PhaseStarting)
	if err != nil {
		return err
	}

	// The slot stays claimed until the platform settles the start, even when
	// the caller stops waiting. ctx still bounds how long the caller waits.
	result := make(chan error, 1)
	go func() {
		err := c.element.Play(context.WithoutCancel(ctx))
		release()
		result <- err
	}()

	select {
	case err = <-result:
	case <-ctx.Done():
		go c.settleAbandonedPlay(result)
		c.debug("stopped waiting for playback start", slog.Any("error", ctx.Err()))
		return fmt.Errorf("play failed: %w", ctx.Err())
	}

	if err != nil {
		if media.IsAbort(err) {
			c.debug("play aborted by a later request")
		} else {
			c.reportError("play", err)
		}
		return fmt.Errorf("play failed: %w", err)
	}

	c.debug("playback started")
	return nil
}

// settleAbandonedPlay reports the outcome of a start whose caller gave up
func (c *Controller) settleAbandonedPlay(result <-chan error) {
	err := <-result
	switch {
	case err == nil:
		c.debug("playback started after caller stopped waiting")
	case media.IsAbort(err):
		c.debug("play aborted by a later request")
	default:
		c.reportError("play", err)
	}
}

// Pause stops playback once any outstanding start has settled. It is best
// effort: benign aborts are ignored and other failures go to OnError only.
func (c *Controller) Pause(ctx context.Context) {
	c.mu.Lock()
	destroyed := c.destroyed
	c.mu.Unlock()

	if destroyed {
		return
	}

	release, err := c.guard.acquire(ctx, PhaseStopping)
	if err != nil {
		c.debug("pause abandoned while waiting for pending start", slog.Any("error", err))
		return
	}

	err = c.element.Pause()
	release()

	switch {
	case err == nil:
		c.debug("playback paused")
	case media.IsAbort(err):
		c.debug("pause interrupted", slog.Any("error", err))
	default:
		c.reportError("pause", err)
	}
}

// Phase returns the playback guard's current phase
func (c *Controller) Phase() Phase {
	return c.guard.current()
}

// Status returns a snapshot of controller state
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		Volume:      c.percentLocked(),
		Muted:       c.muted,
		GraphBuilt:  c.graphBuilt,
		Initialized: c.initialized,
		Destroyed:   c.destroyed,
		Phase:       c.guard.current(),
	}
}

// Destroy removes the element observers and closes the processing context.
// The controller is inert afterwards: Initialize fails, Play returns
// ErrDestroyed and Pause does nothing.
func (c *Controller) Destroy() {
	c.mu.Lock()
	observers := c.observers
	gctx := c.graphCtx
	c.observers = nil
	c.graphCtx = nil
	c.gain = nil
	c.graphBuilt = false
	c.initialized = false
	c.destroyed = true
	c.mu.Unlock()

	for _, off := range observers {
		off()
	}

	if gctx != nil && gctx.State() != graph.StateClosed {
		if err := gctx.Close(); err != nil {
			c.debug("failed to close processing context", slog.Any("error", err))
		}
	}

	c.debug("controller destroyed")
}

// reportError logs and forwards a platform failure to OnError
func (c *Controller) reportError(op string, cause error) {
	err := fmt.Errorf("volume: %s: %w", op, cause)
	if c.config.Debug {
		c.logger.Warn("operation failed", slog.String("op", op), slog.Any("error", cause))
	}
	if c.config.OnError != nil {
		c.config.OnError(err, cause)
	}
}

func (c *Controller) debug(msg string, args ...any) {
	if !c.config.Debug {
		return
	}
	c.logger.Info(msg, args...)
}

// isNil catches typed nil pointers hidden in a non-nil interface
func isNil(el media.Element) bool {
	if el == nil {
		return true
	}
	v := reflect.ValueOf(el)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
