// ABOUTME: Track player for the CLI
// ABOUTME: Owns one volume controller per track and carries volume and mute across tracks
package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
	"github.com/Resonate-Protocol/volumekit/pkg/media"
	"github.com/Resonate-Protocol/volumekit/pkg/platform"
	"github.com/Resonate-Protocol/volumekit/pkg/volume"
)

// Playback states shown in the TUI
const (
	stateIdle    = "idle"
	statePlaying = "playing"
	statePaused  = "paused"
	stateEnded   = "ended"
)

// track is a loaded file
type track struct {
	el     media.Element
	close  func() error
	title  string
	format audio.Format
}

type loader func(path string) (*track, error)

type playerConfig struct {
	Provider platform.Provider
	Load     loader
	Files    []string
	Volume   int
	Loop     bool
	Debug    bool
	Logger   *slog.Logger

	// OnChange is called after any state change, without locks held
	OnChange func()

	// OnError receives controller failures
	OnError func(err, cause error)
}

// Player plays a list of files through a volume controller
type Player struct {
	config playerConfig
	logger *slog.Logger

	mu      sync.Mutex
	index   int
	cur     *track
	ctrl    *volume.Controller
	unsub   []func()
	state   string
	volume  int
	muted   bool
	closed  bool
	done    chan struct{}
	doneSet bool
}

func newPlayer(config playerConfig) (*Player, error) {
	if len(config.Files) == 0 {
		return nil, fmt.Errorf("no files to play")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Player{
		config: config,
		logger: config.Logger.With(slog.String("component", "player")),
		index:  -1,
		state:  stateIdle,
		volume: config.Volume,
		done:   make(chan struct{}),
	}, nil
}

// Load replaces the current track with Files[i]
func (p *Player) Load(i int) error {
	if i < 0 || i >= len(p.config.Files) {
		return fmt.Errorf("track %d out of range", i)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("player closed")
	}
	p.releaseLocked()

	t, err := p.config.Load(p.config.Files[i])
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to load %s: %w", p.config.Files[i], err)
	}

	ctrl, err := volume.New(t.el, p.config.Provider, volume.Config{
		InitialVolume: volume.Percent(p.volume),
		Debug:         p.config.Debug,
		Logger:        p.config.Logger,
		OnError:       p.config.OnError,
	})
	if err != nil {
		t.close()
		p.mu.Unlock()
		return err
	}
	if p.muted {
		ctrl.Mute(true)
	}

	p.index = i
	p.cur = t
	p.ctrl = ctrl
	p.state = stateIdle
	p.unsub = []func(){
		t.el.On(media.EventPlay, func(media.Event) { p.setState(ctrl, statePlaying) }),
		t.el.On(media.EventPause, func(media.Event) { p.setState(ctrl, statePaused) }),
		t.el.On(media.EventEnded, func(media.Event) { go p.advance(ctrl) }),
	}
	p.mu.Unlock()

	p.logger.Info("track loaded", slog.String("title", t.title), slog.Int("index", i))
	p.changed()
	return nil
}

// releaseLocked destroys the current controller and closes its track
func (p *Player) releaseLocked() {
	for _, off := range p.unsub {
		off()
	}
	p.unsub = nil

	if p.ctrl != nil {
		p.ctrl.Destroy()
		p.ctrl = nil
	}
	if p.cur != nil {
		if err := p.cur.close(); err != nil {
			p.logger.Warn("failed to close track", slog.Any("error", err))
		}
		p.cur = nil
	}
}

// setState records an element event for ctrl if it is still current
func (p *Player) setState(ctrl *volume.Controller, state string) {
	p.mu.Lock()
	if p.ctrl != ctrl {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.mu.Unlock()

	p.changed()
}

// advance moves to the next track when ctrl's track ends
func (p *Player) advance(ctrl *volume.Controller) {
	p.mu.Lock()
	if p.ctrl != ctrl || p.closed {
		p.mu.Unlock()
		return
	}
	next := p.index + 1
	if next >= len(p.config.Files) {
		if !p.config.Loop {
			p.state = stateEnded
			p.finishLocked()
			p.mu.Unlock()
			p.changed()
			return
		}
		next = 0
	}
	p.mu.Unlock()

	if err := p.Load(next); err != nil {
		p.logger.Warn("failed to advance", slog.Any("error", err))
		p.mu.Lock()
		p.finishLocked()
		p.mu.Unlock()
		return
	}
	if err := p.Play(context.Background()); err != nil {
		p.logger.Warn("failed to start next track", slog.Any("error", err))
	}
}

func (p *Player) finishLocked() {
	if !p.doneSet {
		p.doneSet = true
		close(p.done)
	}
}

// Done is closed when the last track ends without looping
func (p *Player) Done() <-chan struct{} {
	return p.done
}

func (p *Player) current() *volume.Controller {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl
}

func (p *Player) changed() {
	if p.config.OnChange != nil {
		p.config.OnChange()
	}
}

// Initialize builds the current controller's processing graph
func (p *Player) Initialize(ctx context.Context) bool {
	ctrl := p.current()
	if ctrl == nil {
		return false
	}
	ok := ctrl.Initialize(ctx)
	p.changed()
	return ok
}

// SetVolume sets the volume of the current and later tracks
func (p *Player) SetVolume(percent float64) error {
	ctrl := p.current()
	if ctrl == nil {
		return fmt.Errorf("no track loaded")
	}
	if err := ctrl.SetVolume(percent); err != nil {
		return err
	}
	p.remember(ctrl)
	return nil
}

// Step changes the volume by delta percent
func (p *Player) Step(delta int) error {
	ctrl := p.current()
	if ctrl == nil {
		return fmt.Errorf("no track loaded")
	}
	if err := ctrl.Step(delta); err != nil {
		return err
	}
	p.remember(ctrl)
	return nil
}

// Mute sets the mute state of the current and later tracks
func (p *Player) Mute(muted bool) {
	ctrl := p.current()
	if ctrl == nil {
		return
	}
	ctrl.Mute(muted)
	p.remember(ctrl)
}

func (p *Player) remember(ctrl *volume.Controller) {
	p.mu.Lock()
	if p.ctrl == ctrl {
		p.volume = ctrl.Volume()
		p.muted = ctrl.Muted()
	}
	p.mu.Unlock()

	p.changed()
}

// Play starts the current track
func (p *Player) Play(ctx context.Context) error {
	ctrl := p.current()
	if ctrl == nil {
		return fmt.Errorf("no track loaded")
	}
	err := ctrl.Play(ctx)
	p.changed()
	return err
}

// Pause pauses the current track
func (p *Player) Pause(ctx context.Context) {
	ctrl := p.current()
	if ctrl == nil {
		return
	}
	ctrl.Pause(ctx)
	p.changed()
}

// Toggle pauses while playing and plays otherwise
func (p *Player) Toggle(ctx context.Context) error {
	if p.State() == statePlaying {
		p.Pause(ctx)
		return nil
	}
	return p.Play(ctx)
}

// Status returns the current controller's snapshot
func (p *Player) Status() volume.Status {
	ctrl := p.current()
	if ctrl == nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		return volume.Status{Volume: p.volume, Muted: p.muted, Destroyed: p.closed}
	}
	return ctrl.Status()
}

// State returns the playback state
func (p *Player) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Track returns the current track's title and format
func (p *Player) Track() (string, audio.Format) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil {
		return "", audio.Format{}
	}
	return p.cur.title, p.cur.format
}

// Close destroys the controller and closes the track
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.releaseLocked()
	p.finishLocked()
}
