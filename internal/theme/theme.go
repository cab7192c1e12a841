package theme

import (
	"fmt"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/histoast/internal/model"
)

// ColorPair is the background and foreground color of a toast.
type ColorPair struct {
	Background colorful.Color
	Foreground colorful.Color
}

// Pixel packs a color into 0x00RRGGBB, the layout used by TrueColor visuals.
func Pixel(c colorful.Color) uint32 {
	r, g, b := c.Clamped().RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Theme maps kinds to color pairs.
type Theme struct {
	Name      string    // Theme name (without .toml extension)
	Path      string    // Full path to the TOML file (empty for bundled)
	FontSize  int       // Preferred font size in points, 0 = backend default
	ModTime   time.Time // Last modification time
	IsBundled bool      // True if loaded from the embedded themes

	colors map[model.Kind]ColorPair
}

// themeFile is the on-disk TOML layout.
type themeFile struct {
	Name     string               `toml:"name"`
	FontSize int                  `toml:"font_size"`
	Colors   map[string]colorFile `toml:"colors"`
}

type colorFile struct {
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
}

// New builds a theme from an explicit color table.
func New(name string, colors map[model.Kind]ColorPair) *Theme {
	t := &Theme{Name: name, colors: make(map[model.Kind]ColorPair, len(colors))}
	for k, c := range colors {
		t.colors[k] = c
	}
	return t
}

// Parse decodes a TOML theme. Unknown kinds and malformed colors are errors.
func Parse(name string, data []byte) (*Theme, error) {
	var f themeFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse theme %q: %w", name, err)
	}

	t := &Theme{
		Name:     name,
		FontSize: f.FontSize,
		colors:   make(map[model.Kind]ColorPair, len(f.Colors)),
	}

	for kindName, cf := range f.Colors {
		kind, err := model.ParseKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("theme %q: %w", name, err)
		}
		bg, err := colorful.Hex(cf.Background)
		if err != nil {
			return nil, fmt.Errorf("theme %q: %s background: %w", name, kindName, err)
		}
		fg, err := colorful.Hex(cf.Foreground)
		if err != nil {
			return nil, fmt.Errorf("theme %q: %s foreground: %w", name, kindName, err)
		}
		t.colors[kind] = ColorPair{Background: bg, Foreground: fg}
	}

	return t, nil
}

// NewTheme loads a theme from a TOML file.
func NewTheme(name, path string) (*Theme, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	t, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	t.Path = path
	t.ModTime = info.ModTime()
	return t, nil
}

// Lookup returns the colors for kind. It does not fall back to Log; callers
// decide the fallback policy.
func (t *Theme) Lookup(kind model.Kind) (ColorPair, bool) {
	if t == nil {
		return ColorPair{}, false
	}
	c, ok := t.colors[kind]
	return c, ok
}

// Kinds returns the kinds this theme defines, in declaration order.
func (t *Theme) Kinds() []model.Kind {
	var kinds []model.Kind
	for _, k := range model.AllKinds() {
		if _, ok := t.colors[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool
}
