package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/histoast/internal/model"
)

func TestDefaultDaemonConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()

	assert.Equal(t, BackendX11, cfg.Display.Backend)
	assert.Equal(t, 10, cfg.Display.Spacing)
	assert.Equal(t, 300, cfg.Display.MinWidth)
	assert.Equal(t, 64, cfg.Display.MinHeight)
	assert.Equal(t, 10*time.Millisecond, cfg.Animation.Tick.Duration())
	assert.Equal(t, 500*time.Millisecond, cfg.Animation.Enter.Duration())
	assert.Equal(t, "bootstrap", cfg.Theme.Name)
	assert.False(t, cfg.Audio.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDaemonConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadDaemonConfig("/nonexistent/path/histoast.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig(), cfg)
}

func TestLoadDaemonConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "histoast.toml")

	content := `
[display]
backend = "memory"
spacing = 4

[animation]
enter = "250ms"
exit = 300

[timeouts]
info = "2s"
error = "0"

[theme]
name = "catppuccin"

[audio]
enabled = true
volume = 40

[audio.sounds]
error = "/tmp/error.wav"

[rate]
per_app_per_sec = 2.5
burst = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Display.Backend)
	assert.Equal(t, 4, cfg.Display.Spacing)
	assert.Equal(t, 300, cfg.Display.MinWidth, "unset fields keep defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Animation.Enter.Duration())
	assert.Equal(t, 300*time.Millisecond, cfg.Animation.Exit.Duration())
	assert.Equal(t, 500*time.Millisecond, cfg.Animation.Move.Duration())
	assert.Equal(t, 2*time.Second, cfg.Timeouts.ForKind(model.KindInfo))
	assert.Zero(t, cfg.Timeouts.ForKind(model.KindError))
	assert.Equal(t, "catppuccin", cfg.Theme.Name)
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 40, cfg.Audio.Volume)
	assert.Equal(t, "/tmp/error.wav", cfg.Audio.Sounds.ForKind(model.KindError))
	assert.Empty(t, cfg.Audio.Sounds.ForKind(model.KindInfo))
	assert.InDelta(t, 2.5, cfg.Rate.PerAppPerSec, 0.001)
	assert.Equal(t, 3, cfg.Rate.Burst)
}

func TestLoadDaemonConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "histoast.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display\nspacing ="), 0600))

	_, err := LoadDaemonConfig(path)
	assert.Error(t, err)
}

func TestLoadDaemonConfig_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "histoast.toml")
	require.NoError(t, os.WriteFile(path, []byte("[audio]\nvolume = 150\n"), 0600))

	_, err := LoadDaemonConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume")
}

func TestSaveDaemonConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "histoast.toml")

	cfg := DefaultDaemonConfig()
	cfg.Display.Spacing = 20
	cfg.Timeouts.Warning = Duration(42 * time.Second)
	cfg.Theme.Name = "minimal"

	require.NoError(t, SaveDaemonConfig(cfg, path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDaemonConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DaemonConfig)
		wantErr bool
	}{
		{"defaults", func(*DaemonConfig) {}, false},
		{"unknown backend", func(c *DaemonConfig) { c.Display.Backend = "wayland" }, true},
		{"negative spacing", func(c *DaemonConfig) { c.Display.Spacing = -1 }, true},
		{"zero min height", func(c *DaemonConfig) { c.Display.MinHeight = 0 }, true},
		{"zero tick", func(c *DaemonConfig) { c.Animation.Tick = 0 }, true},
		{"zero move", func(c *DaemonConfig) { c.Animation.Move = 0 }, true},
		{"negative timeout", func(c *DaemonConfig) { c.Timeouts.Success = Duration(-time.Second) }, true},
		{"volume too high", func(c *DaemonConfig) { c.Audio.Volume = 101 }, true},
		{"rate without burst", func(c *DaemonConfig) { c.Rate.Burst = 0 }, true},
		{"rate disabled without burst", func(c *DaemonConfig) { c.Rate.PerAppPerSec = 0; c.Rate.Burst = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDaemonConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"5s", 5 * time.Second, false},
		{"500ms", 500 * time.Millisecond, false},
		{"1m", time.Minute, false},
		{"1500", 1500 * time.Millisecond, false},
		{"0", 0, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration())
		})
	}
}

func TestTimeoutConfig_ForKind(t *testing.T) {
	cfg := DefaultDaemonConfig().Timeouts
	assert.Equal(t, 5*time.Second, cfg.ForKind(model.KindLog))
	assert.Equal(t, 10*time.Second, cfg.ForKind(model.KindWarning))
	assert.Zero(t, cfg.ForKind(model.KindError))
	assert.Equal(t, cfg.ForKind(model.KindLog), cfg.ForKind(model.Kind(99)), "unknown kinds fall back to log")
}

func TestConfigPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "histoast"), ConfigDir())
	assert.Equal(t, filepath.Join(dir, "histoast", "histoast.toml"), DaemonConfigPath())
	assert.Equal(t, filepath.Join(dir, "histoast", "themes"), ThemesDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "sounds", "a.wav"), ExpandPath("~/sounds/a.wav"))
	assert.Equal(t, "/abs/a.wav", ExpandPath("/abs/a.wav"))
	assert.Equal(t, "", ExpandPath(""))
}
