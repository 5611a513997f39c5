// ABOUTME: Tests for the observer registry and error helpers
// ABOUTME: Verifies registration, emission, and removal of observers
package media

import (
	"fmt"
	"testing"
)

func TestObserversEmit(t *testing.T) {
	var obs Observers

	calls := 0
	obs.On(EventPlay, func(ev Event) {
		if ev.Type != EventPlay {
			t.Errorf("expected play event, got %s", ev.Type)
		}
		calls++
	})

	obs.Emit(EventPlay)
	obs.Emit(EventPause)

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestObserversOff(t *testing.T) {
	var obs Observers

	calls := 0
	off := obs.On(EventEnded, func(Event) { calls++ })

	if obs.Count(EventEnded) != 1 {
		t.Fatalf("expected 1 observer, got %d", obs.Count(EventEnded))
	}

	off()
	off() // second call is a no-op

	obs.Emit(EventEnded)

	if calls != 0 {
		t.Errorf("expected no calls after off, got %d", calls)
	}
	if obs.Count(EventEnded) != 0 {
		t.Errorf("expected 0 observers, got %d", obs.Count(EventEnded))
	}
}

func TestIsAbort(t *testing.T) {
	if !IsAbort(ErrAborted) {
		t.Error("expected ErrAborted to be an abort")
	}

	wrapped := fmt.Errorf("play: %w", ErrAborted)
	if !IsAbort(wrapped) {
		t.Error("expected wrapped ErrAborted to be an abort")
	}

	if IsAbort(ErrVolumeReadOnly) {
		t.Error("expected ErrVolumeReadOnly not to be an abort")
	}

	if IsAbort(nil) {
		t.Error("expected nil not to be an abort")
	}
}
