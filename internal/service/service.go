// ABOUTME: suture supervision helpers
// ABOUTME: Runs the remote-control server and mDNS advertiser under one supervisor
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

// Service forces the use of the String method
type Service interface {
	String() string
	suture.Service
}

// NewSupervisor returns a supervisor whose events are logged through logger
func NewSupervisor(name string, logger *slog.Logger) *suture.Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return suture.New(name, suture.Spec{
		EventHook: EventHook(logger),
	})
}

// EventHook logs supervisor events
func EventHook(logger *slog.Logger) suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			logger.Info("service failed to terminate in a timely manner", slog.String("supervisor", e.SupervisorName), slog.String("service", e.ServiceName))
		case suture.EventServicePanic:
			logger.Warn("caught a service panic", slog.String("service", e.ServiceName), slog.String("panic", e.PanicMsg))
			logger.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			logger.Error("service failed", slog.Any("error", e.Err), slog.String("supervisor", e.SupervisorName), slog.String("service", e.ServiceName))
		case suture.EventBackoff:
			logger.Debug("too many service failures, entering backoff", slog.String("supervisor", e.SupervisorName))
		case suture.EventResume:
			logger.Debug("exiting backoff state", slog.String("supervisor", e.SupervisorName))
		default:
			b, _ := json.Marshal(e)
			logger.Warn("unknown supervisor event", slog.Int("type", int(e.Type())), slog.String("event", string(b)))
		}
	}
}

// Add registers service with super, sanitizing its errors
func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError keeps a service's own context errors from being read as the
// supervisor's, since suture stops restarting a service that returns one
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var newErrs [3]error

	if errors.Is(err, suture.ErrDoNotRestart) {
		newErrs[0] = suture.ErrDoNotRestart
	}

	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		newErrs[1] = suture.ErrTerminateSupervisorTree
	}

	newErrs[2] = errors.New(err.Error())

	return errors.Join(newErrs[:]...)
}

// Func adapts a function to Service
type Func struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFunc creates a named function service
func NewFunc(name string, fn func(ctx context.Context) error) Func {
	return Func{name: name, fn: fn}
}

func (s Func) String() string {
	return s.name
}

func (s Func) Serve(ctx context.Context) error {
	return s.fn(ctx)
}
