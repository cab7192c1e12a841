package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/histoast/internal/config"
	"github.com/jmylchreest/histoast/internal/dbus"
	"github.com/jmylchreest/histoast/internal/model"
	"github.com/jmylchreest/histoast/internal/theme"
)

// plainRenderer renders without escape sequences whatever the environment.
func plainRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(termenv.Ascii)
	return r
}

func TestGenerateWaybarStatus(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status dbus.Status
		want   WaybarStatus
	}{
		{
			name:   "empty",
			status: dbus.Status{Theme: "bootstrap"},
			want:   WaybarStatus{Alt: "empty", Tooltip: "No toasts", Class: "empty"},
		},
		{
			name:   "removing only counts as empty",
			status: dbus.Status{Removing: 2},
			want:   WaybarStatus{Alt: "empty", Tooltip: "No toasts", Class: "empty"},
		},
		{
			name:   "shown",
			status: dbus.Status{Active: 3, Theme: "nord"},
			want: WaybarStatus{
				Text:       "3",
				Alt:        "normal",
				Tooltip:    "Shown: 3\nTheme: nord",
				Class:      "normal",
				Percentage: 3,
			},
		},
		{
			name: "queued",
			status: dbus.Status{
				Active:       8,
				Queued:       2,
				OldestQueued: now.Add(-2 * time.Minute),
			},
			want: WaybarStatus{
				Text:       "10",
				Alt:        "critical",
				Tooltip:    "Shown: 8\nQueued: 2 (oldest 2 minutes ago)",
				Class:      "critical",
				Percentage: 10,
			},
		},
		{
			name:   "percentage is capped",
			status: dbus.Status{Active: 8, Queued: 200},
			want: WaybarStatus{
				Text:       "208",
				Alt:        "critical",
				Tooltip:    "Shown: 8\nQueued: 200",
				Class:      "critical",
				Percentage: 100,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateWaybarStatus(tt.status, now))
		})
	}
}

func TestFormatStatus(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	out := formatStatus(plainRenderer(), dbus.Status{
		Active:       1,
		Queued:       1,
		Theme:        "dracula",
		Backend:      "memory",
		StartedAt:    now.Add(-3 * time.Hour),
		OldestQueued: now.Add(-30 * time.Second),
	}, now)

	assert.Contains(t, out, "Active:   1\n")
	assert.Contains(t, out, "Removing: 0\n")
	assert.Contains(t, out, "Queued:   1 (oldest 30 seconds ago)\n")
	assert.Contains(t, out, "Theme:    dracula\n")
	assert.Contains(t, out, "Backend:  memory\n")
	assert.Contains(t, out, "Started:  3 hours ago\n")
}

func TestBuildSendRequest(t *testing.T) {
	saved := sendOpts
	t.Cleanup(func() { sendOpts = saved })

	tests := []struct {
		name        string
		kind        string
		args        []string
		wantKind    model.Kind
		wantSummary string
		wantBody    string
		wantErr     bool
	}{
		{name: "single arg", kind: "success", args: []string{"Build finished"},
			wantKind: model.KindSuccess, wantSummary: "Build finished"},
		{name: "summary and body args", kind: "error", args: []string{"Disk full", "/home", "is", "full"},
			wantKind: model.KindError, wantSummary: "Disk full", wantBody: "/home is full"},
		{name: "newline splits", kind: "info", args: []string{"one\ntwo\nthree"},
			wantKind: model.KindInfo, wantSummary: "one", wantBody: "two\nthree"},
		{name: "bad kind", kind: "fatal", args: []string{"x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sendOpts.kind = tt.kind
			sendOpts.timeout = 3 * time.Second
			sendOpts.appName = "test"

			req, err := buildSendRequest(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, req.Kind)
			assert.Equal(t, tt.wantSummary, req.Summary)
			assert.Equal(t, tt.wantBody, req.Body)
			assert.Equal(t, 3*time.Second, req.Timeout)
			assert.Equal(t, "test", req.AppName)
		})
	}
}

func TestFormatStatus_EmptyQueue(t *testing.T) {
	out := formatStatus(plainRenderer(), dbus.Status{Theme: "bootstrap", Backend: "x11"}, time.Now())

	assert.Contains(t, out, "Queued:   0\n")
	assert.NotContains(t, out, "oldest")
	assert.NotContains(t, out, "Started:")
	assert.NotContains(t, out, "\x1b[", "no escape sequences without a terminal")
}

func TestWriteThemes(t *testing.T) {
	white := colorful.Color{R: 1, G: 1, B: 1}
	bootstrap := theme.New("bootstrap", map[model.Kind]theme.ColorPair{
		model.KindInfo:  {Background: colorful.Color{R: 0.36, G: 0.75, B: 0.87}, Foreground: white},
		model.KindError: {Background: colorful.Color{R: 0.85, G: 0.33, B: 0.31}, Foreground: white},
	})
	mine := theme.New("mine", map[model.Kind]theme.ColorPair{
		model.KindLog: {Background: colorful.Color{}, Foreground: white},
	})

	var buf bytes.Buffer
	err := writeThemes(&buf, plainRenderer(), []themeRow{
		{info: theme.ThemeInfo{Name: "bootstrap", IsDefault: true, IsBundled: true}, theme: bootstrap},
		{info: theme.ThemeInfo{Name: "mine", Path: "/tmp/themes/mine.toml"}, theme: mine},
		{info: theme.ThemeInfo{Name: "broken", Path: "/tmp/themes/broken.toml"}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"*", "bootstrap", "info", "error", "bundled"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"mine", "log", "/tmp/themes/mine.toml"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"broken", "/tmp/themes/broken.toml"}, strings.Fields(lines[2]))

	// Names sit in a fixed column and swatches are padded.
	assert.True(t, strings.HasPrefix(lines[1], "  mine"+strings.Repeat(" ", 12)+"  log "), lines[1])
	assert.Contains(t, lines[0], " info   error ")
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "histoast.toml")

	savedGlobal, savedConfig := globalOpts, configOpts
	t.Cleanup(func() { globalOpts, configOpts = savedGlobal, savedConfig })
	globalOpts.configPath = path

	run := func(opts func()) (string, error) {
		configOpts = struct {
			init  bool
			force bool
			path  bool
		}{}
		opts()
		var buf bytes.Buffer
		configCmd.SetOut(&buf)
		err := runConfig(configCmd, nil)
		return buf.String(), err
	}

	out, err := run(func() { configOpts.path = true })
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	_, err = run(func() { configOpts.init = true })
	require.NoError(t, err)
	cfg, err := config.LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDaemonConfig(), cfg)

	_, err = run(func() { configOpts.init = true })
	assert.Error(t, err, "init refuses to overwrite")

	_, err = run(func() { configOpts.init, configOpts.force = true, true })
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[theme]\nname = \"nord\"\n"), 0600))
	out, err = run(func() {})
	require.NoError(t, err)
	assert.Contains(t, out, "nord")
}
