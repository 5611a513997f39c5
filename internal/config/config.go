// ABOUTME: CLI configuration for volplay
// ABOUTME: Layers defaults, a YAML file, environment variables, and flags
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "VOLPLAY_"

// Config is the resolved CLI configuration
type Config struct {
	Name    string `yaml:"name"`
	Volume  int    `yaml:"volume"`
	Debug   bool   `yaml:"debug"`
	LogFile string `yaml:"log_file"`
	NoTUI   bool   `yaml:"no_tui"`
	Loop    bool   `yaml:"loop"`

	Remote RemoteConfig `yaml:"remote"`
	Device DeviceConfig `yaml:"device"`

	// Set by flags only
	ConfigFile string   `yaml:"-"`
	Discover   bool     `yaml:"-"`
	Files      []string `yaml:"-"`
}

// RemoteConfig configures the remote-control server
type RemoteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	MDNS    bool   `yaml:"mdns"`
}

// DeviceConfig configures the native output device
type DeviceConfig struct {
	SampleRate     int           `yaml:"sample_rate"`
	Channels       int           `yaml:"channels"`
	Buffer         time.Duration `yaml:"buffer"`
	ReadOnlyVolume bool          `yaml:"read_only_volume"`
	StartSuspended bool          `yaml:"start_suspended"`
	DisableGraph   bool          `yaml:"disable_graph"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Volume:  50,
		LogFile: "volplay.log",
		Remote: RemoteConfig{
			Addr: ":8928",
			MDNS: true,
		},
		Device: DeviceConfig{
			SampleRate: 48000,
			Channels:   2,
		},
		ConfigFile: "volplay.yaml",
	}
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume %d outside [0, 100]", c.Volume)
	}
	if c.Device.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.Device.SampleRate)
	}
	if c.Device.Channels != 1 && c.Device.Channels != 2 {
		return fmt.Errorf("invalid channel count %d", c.Device.Channels)
	}
	if c.Remote.Enabled && c.Remote.Addr == "" {
		return fmt.Errorf("remote address is required when remote control is enabled")
	}
	return nil
}

// LoadFile decodes a YAML file over cfg. A missing file is not an error.
func LoadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are skipped and existing variables are not overridden.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from VOLPLAY_* variables
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}

	str("NAME", &cfg.Name)
	str("LOG_FILE", &cfg.LogFile)
	str("REMOTE_ADDR", &cfg.Remote.Addr)

	return errors.Join(
		integer("VOLUME", &cfg.Volume),
		integer("SAMPLE_RATE", &cfg.Device.SampleRate),
		boolean("DEBUG", &cfg.Debug),
		boolean("NO_TUI", &cfg.NoTUI),
		boolean("REMOTE", &cfg.Remote.Enabled),
		boolean("MDNS", &cfg.Remote.MDNS),
		boolean("READ_ONLY_VOLUME", &cfg.Device.ReadOnlyVolume),
	)
}

// bind registers every flag against cfg, using its current values as defaults
func bind(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "Player friendly name (default: hostname-volplay)")
	fs.IntVar(&cfg.Volume, "volume", cfg.Volume, "Initial volume in percent (0-100)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable controller debug logging")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path")
	fs.BoolVar(&cfg.NoTUI, "no-tui", cfg.NoTUI, "Disable TUI, use streaming logs instead")
	fs.BoolVar(&cfg.NoTUI, "stream-logs", cfg.NoTUI, "Alias for -no-tui")
	fs.BoolVar(&cfg.Loop, "loop", cfg.Loop, "Restart playback when the track ends")
	fs.BoolVar(&cfg.Remote.Enabled, "remote", cfg.Remote.Enabled, "Enable the remote-control server")
	fs.StringVar(&cfg.Remote.Addr, "remote-addr", cfg.Remote.Addr, "Remote-control listen address")
	fs.BoolVar(&cfg.Remote.MDNS, "mdns", cfg.Remote.MDNS, "Advertise the remote-control server via mDNS")
	fs.IntVar(&cfg.Device.SampleRate, "sample-rate", cfg.Device.SampleRate, "Output sample rate")
	fs.IntVar(&cfg.Device.Channels, "channels", cfg.Device.Channels, "Output channels (1 or 2)")
	fs.DurationVar(&cfg.Device.Buffer, "buffer", cfg.Device.Buffer, "Output buffer duration (0: device default)")
	fs.BoolVar(&cfg.Device.ReadOnlyVolume, "read-only-volume", cfg.Device.ReadOnlyVolume, "Emulate a platform whose element volume is read-only")
	fs.BoolVar(&cfg.Device.StartSuspended, "suspended", cfg.Device.StartSuspended, "Create processing contexts suspended")
	fs.BoolVar(&cfg.Device.DisableGraph, "no-graph", cfg.Device.DisableGraph, "Report the processing graph as unsupported")
	fs.BoolVar(&cfg.Discover, "discover", cfg.Discover, "List players advertised on the network and exit")
}

// Parse resolves configuration with precedence flags > env > file > defaults.
// Positional arguments become Files.
func Parse(name string, args []string, lookup func(string) (string, bool)) (Config, error) {
	// First pass finds the config file path
	early := Default()
	pre := flag.NewFlagSet(name, flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	bind(pre, &early)
	if err := pre.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.ConfigFile = early.ConfigFile
	if err := LoadFile(cfg.ConfigFile, &cfg); err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	bind(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Files = fs.Args()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
