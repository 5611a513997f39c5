// ABOUTME: Tests for supervision helpers
// ABOUTME: Covers error sanitizing and supervised function services
package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func TestSanitizeErrorNil(t *testing.T) {
	if err := SanitizeError(context.Background(), nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestSanitizeErrorPassesOrdinaryErrors(t *testing.T) {
	want := errors.New("listen failed")
	if err := SanitizeError(context.Background(), want); err != want {
		t.Errorf("expected original error, got %v", err)
	}
}

func TestSanitizeErrorHidesForeignContextErrors(t *testing.T) {
	err := SanitizeError(context.Background(), context.DeadlineExceeded)

	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected context error identity to be removed")
	}
}

func TestSanitizeErrorKeepsSupervisorSignals(t *testing.T) {
	in := errors.Join(context.Canceled, suture.ErrDoNotRestart)

	err := SanitizeError(context.Background(), in)
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Error("expected ErrDoNotRestart to survive")
	}
	if errors.Is(err, context.Canceled) {
		t.Error("expected context.Canceled to be removed")
	}
}

func TestSanitizeErrorOwnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := SanitizeError(ctx, errors.New("shutting down")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected ctx error, got %v", err)
	}
}

func TestSupervisorRestartsFailingService(t *testing.T) {
	var runs atomic.Int32
	started := make(chan struct{})

	svc := NewFunc("flaky", func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("first run fails")
		}
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	if svc.String() != "flaky" {
		t.Errorf("unexpected name %q", svc.String())
	}

	super := NewSupervisor("test", nil)
	Add(super, svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := super.ServeBackground(ctx)

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("service was not restarted")
	}

	cancel()
	<-done

	if runs.Load() != 2 {
		t.Errorf("expected 2 runs, got %d", runs.Load())
	}
}
