// ABOUTME: Native capability provider
// ABOUTME: Lazily opens the oto device and constructs elements and graph contexts
package native

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/Resonate-Protocol/volumekit/pkg/audio"
	"github.com/Resonate-Protocol/volumekit/pkg/audio/resample"
	"github.com/Resonate-Protocol/volumekit/pkg/graph"
)

// Options configures the native platform
type Options struct {
	// SampleRate of the output device (default: 48000)
	SampleRate int

	// Channels of the output device (default: 2)
	Channels int

	// BufferSize of the output device (default: oto's choice)
	BufferSize time.Duration

	// ReadOnlyVolume makes element volume assignments fail
	ReadOnlyVolume bool

	// StartSuspended creates graph contexts in the suspended state
	StartSuspended bool

	// DisableGraph reports the graph API as unavailable
	DisableGraph bool
}

// player is the subset of *oto.Player used by elements
type player interface {
	Play()
	Pause()
	IsPlaying() bool
	Volume() float64
	SetVolume(volume float64)
	Err() error
	Close() error
}

// device opens players on an output device
type device interface {
	NewPlayer(r io.Reader) player
	Err() error
}

// Platform is the native capability provider. oto allows one context per
// process, so a Platform should be shared by every element.
type Platform struct {
	opts   Options
	logger *slog.Logger

	openDevice func(Options) (device, error)

	once   sync.Once
	dev    device
	devErr error
}

// New creates a native platform
func New(opts Options) *Platform {
	if opts.SampleRate == 0 {
		opts.SampleRate = 48000
	}
	if opts.Channels == 0 {
		opts.Channels = 2
	}

	return &Platform{
		opts:       opts,
		logger:     slog.Default().With(slog.String("component", "native")),
		openDevice: openOto,
	}
}

// Options returns the platform configuration
func (p *Platform) Options() Options {
	return p.opts
}

// device opens the output device on first use
func (p *Platform) device() (device, error) {
	p.once.Do(func() {
		p.dev, p.devErr = p.openDevice(p.opts)
		if p.devErr == nil {
			p.logger.Debug("audio output initialized",
				slog.Int("sample_rate", p.opts.SampleRate),
				slog.Int("channels", p.opts.Channels))
		}
	})
	return p.dev, p.devErr
}

// SupportsGraphAPI reports whether software graphs are enabled
func (p *Platform) SupportsGraphAPI() bool {
	return !p.opts.DisableGraph
}

// IsIOSLike reports whether the binary targets iOS
func (p *Platform) IsIOSLike() bool {
	return runtime.GOOS == "ios"
}

// ProbeVolumeWritability reports whether element volume assignments succeed
func (p *Platform) ProbeVolumeWritability() bool {
	return !p.opts.ReadOnlyVolume
}

// NewGraphContext creates a software processing context on the output device
func (p *Platform) NewGraphContext() (graph.Context, error) {
	if p.opts.DisableGraph {
		return nil, fmt.Errorf("processing graphs disabled")
	}

	dev, err := p.device()
	if err != nil {
		return nil, err
	}
	if err := dev.Err(); err != nil {
		return nil, fmt.Errorf("audio device error: %w", err)
	}

	return newGraphContext(p.opts.StartSuspended), nil
}

// NewElement creates a playable element for src. Sources at a different
// sample rate are resampled; the channel count must match the device.
func (p *Platform) NewElement(src audio.Source) (*Element, error) {
	format := src.Format()
	if format.Channels != p.opts.Channels {
		return nil, fmt.Errorf("channel count mismatch: source has %d, output has %d", format.Channels, p.opts.Channels)
	}

	dev, err := p.device()
	if err != nil {
		return nil, err
	}

	if format.SampleRate != p.opts.SampleRate {
		p.logger.Debug("resampling source",
			slog.Int("from", format.SampleRate),
			slog.Int("to", p.opts.SampleRate))
		src = resample.New(src, p.opts.SampleRate)
	}

	return newElement(src, dev, p.opts.ReadOnlyVolume), nil
}

// otoDevice adapts *oto.Context to device
type otoDevice struct {
	ctx *oto.Context
}

func (d otoDevice) NewPlayer(r io.Reader) player { return d.ctx.NewPlayer(r) }
func (d otoDevice) Err() error                   { return d.ctx.Err() }

func openOto(opts Options) (device, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: opts.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   opts.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-ready

	return otoDevice{ctx: ctx}, nil
}
