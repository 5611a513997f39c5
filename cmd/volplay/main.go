// ABOUTME: Entry point for the volplay CLI
// ABOUTME: Plays audio files through a volume controller with TUI and remote control
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/volumekit/internal/config"
	"github.com/Resonate-Protocol/volumekit/internal/discovery"
	"github.com/Resonate-Protocol/volumekit/internal/logging"
	"github.com/Resonate-Protocol/volumekit/internal/remote"
	"github.com/Resonate-Protocol/volumekit/internal/service"
	"github.com/Resonate-Protocol/volumekit/internal/ui"
	"github.com/Resonate-Protocol/volumekit/internal/version"
	"github.com/Resonate-Protocol/volumekit/pkg/audio"
	"github.com/Resonate-Protocol/volumekit/pkg/audio/decode"
	"github.com/Resonate-Protocol/volumekit/pkg/platform/native"
	"github.com/Resonate-Protocol/volumekit/pkg/volume"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "volplay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := config.Parse("volplay", os.Args[1:], os.LookupEnv)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	useTUI := !cfg.NoTUI && !cfg.Discover

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger, closer := logging.Setup(logging.Options{
		Level:   level,
		File:    cfg.LogFile,
		Console: !useTUI,
	})
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Discover {
		return discover(ctx)
	}
	if len(cfg.Files) == 0 {
		return fmt.Errorf("usage: volplay [flags] FILE... (supported: %v)", decode.Extensions())
	}

	playerName := cfg.Name
	if playerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		playerName = fmt.Sprintf("%s-volplay", hostname)
	}

	logger.Info("starting", slog.String("name", playerName), slog.String("version", version.Version))

	provider := native.New(native.Options{
		SampleRate:     cfg.Device.SampleRate,
		Channels:       cfg.Device.Channels,
		BufferSize:     cfg.Device.Buffer,
		ReadOnlyVolume: cfg.Device.ReadOnlyVolume,
		StartSuspended: cfg.Device.StartSuspended,
		DisableGraph:   cfg.Device.DisableGraph,
	})

	compat := volume.CompatibilityInfo(provider)
	logger.Info("platform capabilities",
		slog.Bool("ios", compat.IsIOS),
		slog.Bool("graph", compat.WebAudioSupported),
		slog.Bool("volume_writable", compat.VolumeControlSupported))

	// TUI setup
	var tuiProg *tea.Program
	var controls *ui.Controls

	if useTUI {
		controls = ui.NewControls()
		tuiProg, err = ui.Run(controls)
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				logger.Warn("TUI exited", slog.Any("error", err))
			}
		}()
		defer tuiProg.Quit()
	}

	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}
	updateTUI(ui.StatusMsg{Compatibility: &compat})

	var (
		player *Player
		srv    *remote.Server
	)

	notify := func() {
		if player == nil {
			return
		}
		status := player.Status()
		title, format := player.Track()
		updateTUI(ui.StatusMsg{
			Title:      title,
			Codec:      format.Codec,
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
			State:      player.State(),
			Controller: &status,
		})
		if srv != nil {
			srv.Notify()
		}
	}

	player, err = newPlayer(playerConfig{
		Provider: provider,
		Load:     openTrack(provider),
		Files:    cfg.Files,
		Volume:   cfg.Volume,
		Loop:     cfg.Loop,
		Debug:    cfg.Debug,
		Logger:   logger,
		OnChange: notify,
		OnError: func(err, cause error) {
			logger.Warn("controller error", slog.Any("error", err))
			updateTUI(ui.StatusMsg{Error: err.Error()})
		},
	})
	if err != nil {
		return err
	}
	defer player.Close()

	if cfg.Remote.Enabled {
		srv, err = remote.New(remote.Config{
			Addr:          cfg.Remote.Addr,
			Name:          playerName,
			Version:       version.Version,
			Player:        player,
			Compatibility: compat,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		super := service.NewSupervisor("volplay", logger)
		service.Add(super, srv)

		if cfg.Remote.MDNS {
			port, err := portOf(cfg.Remote.Addr)
			if err != nil {
				return err
			}
			service.Add(super, discovery.NewAdvertiser(discovery.Config{
				ServiceName: discovery.InstanceName(playerName),
				Port:        port,
				Version:     version.Version,
				Logger:      logger,
			}))
		}
		if tuiProg != nil {
			service.Add(super, statusService(srv, updateTUI))
		}

		super.ServeBackground(ctx)
		updateTUI(ui.StatusMsg{RemoteAddr: cfg.Remote.Addr})
	}

	if err := player.Load(0); err != nil {
		return err
	}
	if err := player.Play(ctx); err != nil {
		logger.Warn("initial play failed", slog.Any("error", err))
	}

	if controls != nil {
		go handleControls(ctx, logger, player, controls)
	}

	// Wait for quit signal from TUI, OS, or the end of the playlist
	var quit <-chan struct{}
	if controls != nil {
		quit = controls.Quit
	}

	select {
	case <-quit:
		logger.Info("received quit signal from TUI")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case <-player.Done():
		logger.Info("playback finished")
	}

	stop()
	logger.Info("player stopped")
	return nil
}

// openTrack decodes path and creates a native element for it
func openTrack(p *native.Platform) loader {
	return func(path string) (*track, error) {
		src, err := decode.Open(path)
		if err != nil {
			return nil, err
		}
		format := src.Format()

		el, err := p.NewElement(audio.Remix(src, p.Options().Channels))
		if err != nil {
			src.Close()
			return nil, err
		}

		return &track{
			el:     el,
			close:  el.Close,
			title:  filepath.Base(path),
			format: format,
		}, nil
	}
}

// handleControls applies TUI commands to the player
func handleControls(ctx context.Context, logger *slog.Logger, player *Player, controls *ui.Controls) {
	for {
		select {
		case cmd := <-controls.Commands:
			var err error
			switch cmd.Kind {
			case ui.CommandStep:
				err = player.Step(cmd.Delta)
			case ui.CommandMute:
				player.Mute(cmd.Muted)
			case ui.CommandTogglePlay:
				err = player.Toggle(ctx)
			case ui.CommandInitialize:
				player.Initialize(ctx)
			}
			if err != nil {
				logger.Warn("command failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// statusInterval is how often remote session counts reach the TUI
var statusInterval = 500 * time.Millisecond

// statusService runs statusLoop under the supervisor
func statusService(srv *remote.Server, updateTUI func(ui.StatusMsg)) service.Func {
	return service.NewFunc("status", func(ctx context.Context) error {
		return statusLoop(ctx, srv, updateTUI)
	})
}

// statusLoop periodically refreshes remote session counts in the TUI
func statusLoop(ctx context.Context, srv *remote.Server, updateTUI func(ui.StatusMsg)) error {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := srv.Sessions()
			msg := ui.StatusMsg{Sessions: &n}
			if addr := srv.Addr(); addr != nil {
				msg.RemoteAddr = addr.String()
			}
			updateTUI(msg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// discover lists players advertised on the local network
func discover(ctx context.Context) error {
	endpoints, err := discovery.Browse(ctx, 3*time.Second)
	if err != nil {
		return err
	}
	if len(endpoints) == 0 {
		fmt.Println("no players found")
		return nil
	}
	for _, ep := range endpoints {
		fmt.Printf("%s\t%s\n", ep.Name, ep.URL())
	}
	return nil
}

func portOf(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid remote address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("remote address %q needs an explicit port for mDNS", addr)
	}
	return port, nil
}
