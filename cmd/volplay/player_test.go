// ABOUTME: Tests for the CLI track player
// ABOUTME: Covers loading, carrying volume across tracks, toggling, and advancing
package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/volumekit/internal/platformtest"
	"github.com/Resonate-Protocol/volumekit/pkg/audio"
	"github.com/Resonate-Protocol/volumekit/pkg/media"
)

type fakeLoader struct {
	mu       sync.Mutex
	elements []*platformtest.Element
	closed   int
	fail     map[string]bool
}

func (l *fakeLoader) load(path string) (*track, error) {
	if l.fail[path] {
		return nil, errors.New("unsupported file")
	}

	el := platformtest.NewElement()
	l.mu.Lock()
	l.elements = append(l.elements, el)
	l.mu.Unlock()

	return &track{
		el:     el,
		title:  path,
		format: audio.Format{Codec: "wav", SampleRate: 48000, Channels: 2},
		close: func() error {
			l.mu.Lock()
			l.closed++
			l.mu.Unlock()
			return nil
		},
	}, nil
}

func (l *fakeLoader) element(i int) *platformtest.Element {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.elements[i]
}

func (l *fakeLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.elements)
}

func newTestPlayer(t *testing.T, files []string, loop bool) (*Player, *fakeLoader) {
	t.Helper()

	l := &fakeLoader{}
	p, err := newPlayer(playerConfig{
		Provider: &platformtest.Provider{Graph: true},
		Load:     l.load,
		Files:    files,
		Volume:   40,
		Loop:     loop,
	})
	if err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	t.Cleanup(p.Close)
	return p, l
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewPlayerRequiresFiles(t *testing.T) {
	if _, err := newPlayer(playerConfig{}); err == nil {
		t.Error("expected error without files")
	}
}

func TestLoadAndStatus(t *testing.T) {
	p, _ := newTestPlayer(t, []string{"a.wav"}, false)

	if err := p.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	title, format := p.Track()
	if title != "a.wav" || format.Codec != "wav" {
		t.Errorf("unexpected track %q %+v", title, format)
	}
	if p.Status().Volume != 40 {
		t.Errorf("expected volume 40, got %d", p.Status().Volume)
	}
	if p.State() != stateIdle {
		t.Errorf("expected idle, got %s", p.State())
	}
}

func TestLoadOutOfRange(t *testing.T) {
	p, _ := newTestPlayer(t, []string{"a.wav"}, false)

	if err := p.Load(1); err == nil {
		t.Error("expected error for out-of-range track")
	}
}

func TestLoadFailure(t *testing.T) {
	l := &fakeLoader{fail: map[string]bool{"bad.xyz": true}}
	p, err := newPlayer(playerConfig{Provider: &platformtest.Provider{}, Load: l.load, Files: []string{"bad.xyz"}, Volume: 50})
	if err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	defer p.Close()

	if err := p.Load(0); err == nil {
		t.Error("expected load error")
	}
	if err := p.Play(context.Background()); err == nil {
		t.Error("expected play error with no track")
	}
}

func TestVolumeCarriesAcrossTracks(t *testing.T) {
	p, l := newTestPlayer(t, []string{"a.wav", "b.wav"}, false)

	if err := p.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := p.SetVolume(70); err != nil {
		t.Fatalf("SetVolume failed: %v", err)
	}
	p.Mute(true)

	if err := p.Load(1); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	status := p.Status()
	if status.Volume != 70 || !status.Muted {
		t.Errorf("expected volume 70 muted, got %+v", status)
	}
	if l.closed != 1 {
		t.Errorf("expected previous track closed, got %d closes", l.closed)
	}
}

func TestToggle(t *testing.T) {
	p, l := newTestPlayer(t, []string{"a.wav"}, false)
	if err := p.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ctx := context.Background()
	if err := p.Toggle(ctx); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if p.State() != statePlaying {
		t.Errorf("expected playing, got %s", p.State())
	}

	if err := p.Toggle(ctx); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if p.State() != statePaused {
		t.Errorf("expected paused, got %s", p.State())
	}

	calls := l.element(0).Calls()
	if len(calls) != 2 || calls[0] != "play" || calls[1] != "pause" {
		t.Errorf("expected [play pause], got %v", calls)
	}
}

func TestAdvanceOnEnded(t *testing.T) {
	p, l := newTestPlayer(t, []string{"a.wav", "b.wav"}, false)
	if err := p.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	l.element(0).Emit(media.EventEnded)

	waitFor(t, func() bool { return l.count() == 2 && p.State() == statePlaying })

	if title, _ := p.Track(); title != "b.wav" {
		t.Errorf("expected b.wav, got %q", title)
	}

	l.element(1).Emit(media.EventEnded)

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected Done after the last track")
	}
	if p.State() != stateEnded {
		t.Errorf("expected ended, got %s", p.State())
	}
}

func TestLoopRestarts(t *testing.T) {
	p, l := newTestPlayer(t, []string{"a.wav"}, true)
	if err := p.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	l.element(0).Emit(media.EventEnded)

	waitFor(t, func() bool { return l.count() == 2 })

	select {
	case <-p.Done():
		t.Error("expected looping player to keep running")
	default:
	}
}

func TestStaleEventsIgnored(t *testing.T) {
	p, l := newTestPlayer(t, []string{"a.wav", "b.wav"}, false)
	if err := p.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := p.Load(1); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// The first track's observers were removed with its controller
	l.element(0).Emit(media.EventEnded)
	time.Sleep(20 * time.Millisecond)

	if l.count() != 2 {
		t.Errorf("expected no extra loads, got %d", l.count())
	}
}

func TestOnChangeCalled(t *testing.T) {
	var mu sync.Mutex
	changes := 0

	l := &fakeLoader{}
	p, err := newPlayer(playerConfig{
		Provider: &platformtest.Provider{},
		Load:     l.load,
		Files:    []string{"a.wav"},
		Volume:   50,
		OnChange: func() { mu.Lock(); changes++; mu.Unlock() },
	})
	if err != nil {
		t.Fatalf("failed to create player: %v", err)
	}
	defer p.Close()

	p.Load(0)
	p.Step(5)

	mu.Lock()
	defer mu.Unlock()
	if changes < 2 {
		t.Errorf("expected change notifications, got %d", changes)
	}
}

func TestClose(t *testing.T) {
	p, l := newTestPlayer(t, []string{"a.wav"}, false)
	if err := p.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	p.Close()
	p.Close()

	if l.closed != 1 {
		t.Errorf("expected one close, got %d", l.closed)
	}
	if !p.Status().Destroyed {
		t.Error("expected destroyed status after close")
	}
	if err := p.Load(0); err == nil {
		t.Error("expected Load to fail after close")
	}
}
