// ABOUTME: slog handler setup for the CLI
// ABOUTME: Console output via console-slog, rotating file output via lumberjack
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	console "github.com/phsym/console-slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures logging
type Options struct {
	Level slog.Level

	// File is the log file path. Empty disables file logging.
	File string

	// MaxSizeMB before rotation (default: 10)
	MaxSizeMB int

	// MaxBackups kept after rotation (default: 3)
	MaxBackups int

	// Console enables the stderr handler. The TUI owns the terminal, so it
	// is disabled in TUI mode.
	Console bool

	// ConsoleWriter overrides stderr
	ConsoleWriter io.Writer
}

// Setup builds a logger from opts and installs it as the slog default.
// The returned closer flushes and closes the log file.
func Setup(opts Options) (*slog.Logger, io.Closer) {
	if opts.MaxSizeMB == 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups == 0 {
		opts.MaxBackups = 3
	}

	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}

	if opts.Console {
		w := opts.ConsoleWriter
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, console.NewHandler(w, &console.HandlerOptions{
			Level: opts.Level,
		}))
	}

	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{
			Level: opts.Level,
		}))
		closer = file
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(io.Discard, nil)
	case 1:
		handler = handlers[0]
	default:
		handler = fanout(handlers)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout sends each record to every handler
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
