package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

// EmbeddedThemes contains all bundled theme TOML files.
//
//go:embed themes/*.toml
var EmbeddedThemes embed.FS

// DefaultThemeName is the name of the built-in default theme.
const DefaultThemeName = "bootstrap"

// GetEmbeddedTheme retrieves a bundled theme file by name.
func GetEmbeddedTheme(name string) ([]byte, bool) {
	data, err := EmbeddedThemes.ReadFile("themes/" + name + ".toml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListEmbeddedThemes returns names of all embedded themes.
func ListEmbeddedThemes() []string {
	entries, err := fs.ReadDir(EmbeddedThemes, "themes")
	if err != nil {
		return []string{DefaultThemeName}
	}

	var themes []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ext := filepath.Ext(entry.Name()); ext == ".toml" {
			themes = append(themes, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	return themes
}

// IsEmbeddedTheme checks if a theme name is bundled.
func IsEmbeddedTheme(name string) bool {
	_, found := GetEmbeddedTheme(name)
	return found
}

// Default returns the parsed bundled default theme.
func Default() *Theme {
	data, _ := GetEmbeddedTheme(DefaultThemeName)
	t, err := Parse(DefaultThemeName, data)
	if err != nil {
		// The bundled file is part of the binary; a parse failure is a build defect.
		panic(err)
	}
	t.IsBundled = true
	return t
}
