package theme

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Loader resolves themes by name and keeps the current one hot-reloaded.
type Loader struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	themesDir string
	theme     *Theme
	watcher   *Watcher

	onChange func(*Theme)
}

// NewLoader creates a new theme loader reading user themes from themesDir.
// An empty themesDir disables user themes.
func NewLoader(themesDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger,
		themesDir: themesDir,
		theme:     Default(),
	}
}

// SetChangeCallback sets the callback invoked when the current theme is
// replaced by a reload.
func (l *Loader) SetChangeCallback(callback func(*Theme)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = callback
}

// LoadTheme loads a theme by name and makes it current.
// Theme resolution order:
//  1. User themes directory (~/.config/histoast/themes/<name>.toml)
//  2. Embedded/bundled themes
//  3. The default theme
func (l *Loader) LoadTheme(name string) *Theme {
	if name == "" {
		name = DefaultThemeName
	}

	t := l.resolve(name)

	l.mu.Lock()
	l.theme = t
	l.mu.Unlock()
	return t
}

func (l *Loader) resolve(name string) *Theme {
	if l.themesDir != "" {
		themePath := filepath.Join(l.themesDir, name+".toml")
		if _, err := os.Stat(themePath); err == nil {
			t, err := NewTheme(name, themePath)
			if err == nil {
				l.logger.Info("loaded user theme", "name", name, "path", themePath)
				return t
			}
			l.logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
		}
	}

	if data, found := GetEmbeddedTheme(name); found {
		t, err := Parse(name, data)
		if err == nil {
			t.IsBundled = true
			l.logger.Info("loaded bundled theme", "name", name)
			return t
		}
		l.logger.Warn("failed to parse bundled theme", "theme", name, "error", err)
	}

	l.logger.Warn("theme not found, using default", "theme", name)
	return Default()
}

// Current returns the currently loaded theme.
func (l *Loader) Current() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.theme
}

// Reload re-resolves the current theme and notifies the change callback.
func (l *Loader) Reload() *Theme {
	l.mu.RLock()
	name := l.theme.Name
	l.mu.RUnlock()

	t := l.LoadTheme(name)
	l.notify(t)
	return t
}

func (l *Loader) notify(t *Theme) {
	l.mu.RLock()
	callback := l.onChange
	l.mu.RUnlock()
	if callback != nil {
		callback(t)
	}
}

// StartHotReload starts watching the current theme file for changes.
// Bundled themes are not watched.
func (l *Loader) StartHotReload(ctx context.Context) error {
	// The watcher callback takes l.mu, so never stop a watcher while holding it.
	l.StopHotReload()

	current := l.Current()
	if current == nil || current.Path == "" {
		l.logger.Debug("not starting hot-reload for bundled theme")
		return nil
	}

	w, err := NewWatcher(current.Path, l.logger)
	if err != nil {
		return err
	}
	w.SetChangeCallback(func() {
		l.Reload()
		l.logger.Info("hot-reloaded theme", "path", w.Path())
	})
	if err := w.Start(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	l.watcher = w
	l.mu.Unlock()
	return nil
}

// StopHotReload stops watching the theme for changes.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// ListThemes returns bundled and user themes, with user overrides replacing
// bundled entries of the same name.
func (l *Loader) ListThemes() []ThemeInfo {
	index := make(map[string]int)
	var themes []ThemeInfo

	for _, name := range ListEmbeddedThemes() {
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if l.themesDir == "" {
		return themes
	}

	entries, err := os.ReadDir(l.themesDir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Debug("failed to read themes directory", "error", err)
		}
		return themes
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		info := ThemeInfo{
			Name:      name,
			Path:      filepath.Join(l.themesDir, entry.Name()),
			IsDefault: name == DefaultThemeName,
		}
		if i, ok := index[name]; ok {
			themes[i] = info
			continue
		}
		index[name] = len(themes)
		themes = append(themes, info)
	}

	return themes
}
