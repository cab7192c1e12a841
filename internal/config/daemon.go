package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/histoast/internal/model"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "500ms", "5s", "1m", or integer milliseconds.
// A value of "0" or 0 means never, where that makes sense.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '500ms', '5s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Backend names for DisplayConfig.Backend.
const (
	BackendX11    = "x11"
	BackendMemory = "memory"
)

// DaemonConfig is the configuration for the histoast daemon.
// Loaded from ~/.config/histoast/histoast.toml
type DaemonConfig struct {
	Display   DisplayConfig   `toml:"display"`
	Animation AnimationConfig `toml:"animation"`
	Timeouts  TimeoutConfig   `toml:"timeouts"`
	Theme     ThemeConfig     `toml:"theme"`
	Audio     AudioConfig     `toml:"audio"`
	Rate      RateConfig      `toml:"rate"`
}

// DisplayConfig contains surface and stacking settings.
type DisplayConfig struct {
	Backend    string `toml:"backend"`     // "x11" or "memory"
	Spacing    int    `toml:"spacing"`     // Gap between stacked toasts and the screen edge
	MinWidth   int    `toml:"min_width"`   // Content-independent width floor
	MinHeight  int    `toml:"min_height"`  // Content-independent height floor
	Padding    int    `toml:"padding"`     // Inner padding around the text
	CharWidth  int    `toml:"char_width"`  // Cell width used for text metrics
	LineHeight int    `toml:"line_height"` // Line height used for text metrics
}

// AnimationConfig contains tween durations and the tick interval.
type AnimationConfig struct {
	Tick  Duration `toml:"tick"`
	Enter Duration `toml:"enter"`
	Exit  Duration `toml:"exit"`
	Move  Duration `toml:"move"`
}

// TimeoutConfig contains the default auto-close delay per kind.
// A value of "0" means the toast stays until clicked or closed.
type TimeoutConfig struct {
	Log     Duration `toml:"log"`
	Info    Duration `toml:"info"`
	Warning Duration `toml:"warning"`
	Error   Duration `toml:"error"`
	Success Duration `toml:"success"`
}

// ThemeConfig selects the color theme.
type ThemeConfig struct {
	Name string `toml:"name"` // Theme name without .toml extension
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-kind sound file paths.
type SoundConfig struct {
	Log     string `toml:"log"`
	Info    string `toml:"info"`
	Warning string `toml:"warning"`
	Error   string `toml:"error"`
	Success string `toml:"success"`
}

// RateConfig limits how fast a single application can push toasts over D-Bus.
type RateConfig struct {
	PerAppPerSec float64 `toml:"per_app_per_sec"` // 0 disables limiting
	Burst        int     `toml:"burst"`
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Display: DisplayConfig{
			Backend:    BackendX11,
			Spacing:    10,
			MinWidth:   300,
			MinHeight:  64,
			Padding:    12,
			CharWidth:  9,
			LineHeight: 18,
		},
		Animation: AnimationConfig{
			Tick:  Duration(10 * time.Millisecond),
			Enter: Duration(500 * time.Millisecond),
			Exit:  Duration(500 * time.Millisecond),
			Move:  Duration(500 * time.Millisecond),
		},
		Timeouts: TimeoutConfig{
			Log:     Duration(5 * time.Second),
			Info:    Duration(5 * time.Second),
			Warning: Duration(10 * time.Second),
			Error:   Duration(0),
			Success: Duration(5 * time.Second),
		},
		Theme: ThemeConfig{
			Name: "bootstrap",
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
		},
		Rate: RateConfig{
			PerAppPerSec: 5,
			Burst:        10,
		},
	}
}

// LoadDaemonConfig loads the daemon configuration from path.
// If path is empty the default location is used. A missing file yields the
// default configuration.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		path = DaemonConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveDaemonConfig saves the daemon configuration to path, or to the default
// location when path is empty.
func SaveDaemonConfig(cfg *DaemonConfig, path string) error {
	if path == "" {
		path = DaemonConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	switch c.Display.Backend {
	case BackendX11, BackendMemory:
	default:
		return fmt.Errorf("invalid backend %q, must be one of: %s, %s", c.Display.Backend, BackendX11, BackendMemory)
	}

	if c.Display.Spacing < 0 || c.Display.Spacing > 200 {
		return fmt.Errorf("spacing must be between 0 and 200, got %d", c.Display.Spacing)
	}
	if c.Display.MinWidth < 1 || c.Display.MinHeight < 1 {
		return fmt.Errorf("min_width and min_height must be positive, got %dx%d", c.Display.MinWidth, c.Display.MinHeight)
	}
	if c.Display.CharWidth < 1 || c.Display.LineHeight < 1 {
		return fmt.Errorf("char_width and line_height must be positive")
	}

	if c.Animation.Tick.Duration() <= 0 {
		return fmt.Errorf("animation tick must be positive, got %s", c.Animation.Tick.Duration())
	}
	for name, d := range map[string]Duration{
		"enter": c.Animation.Enter,
		"exit":  c.Animation.Exit,
		"move":  c.Animation.Move,
	} {
		if d.Duration() <= 0 {
			return fmt.Errorf("animation %s duration must be positive, got %s", name, d.Duration())
		}
	}

	for _, k := range model.AllKinds() {
		if c.Timeouts.ForKind(k) < 0 {
			return fmt.Errorf("timeout for %s cannot be negative", k)
		}
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if c.Rate.PerAppPerSec < 0 {
		return fmt.Errorf("per_app_per_sec cannot be negative")
	}
	if c.Rate.PerAppPerSec > 0 && c.Rate.Burst < 1 {
		return fmt.Errorf("burst must be at least 1 when rate limiting is enabled, got %d", c.Rate.Burst)
	}

	return nil
}

// ForKind returns the auto-close delay for the given kind.
func (t TimeoutConfig) ForKind(kind model.Kind) time.Duration {
	switch kind {
	case model.KindInfo:
		return t.Info.Duration()
	case model.KindWarning:
		return t.Warning.Duration()
	case model.KindError:
		return t.Error.Duration()
	case model.KindSuccess:
		return t.Success.Duration()
	default:
		return t.Log.Duration()
	}
}

// ForKind returns the sound path configured for the given kind, with ~ expanded.
func (s SoundConfig) ForKind(kind model.Kind) string {
	var path string
	switch kind {
	case model.KindInfo:
		path = s.Info
	case model.KindWarning:
		path = s.Warning
	case model.KindError:
		path = s.Error
	case model.KindSuccess:
		path = s.Success
	default:
		path = s.Log
	}
	return ExpandPath(path)
}
