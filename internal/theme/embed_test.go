package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/histoast/internal/model"
)

func TestGetEmbeddedTheme_Bootstrap(t *testing.T) {
	data, found := GetEmbeddedTheme("bootstrap")
	require.True(t, found, "bootstrap theme should be found")
	assert.Contains(t, string(data), "[colors.log]")
	assert.Contains(t, string(data), "#5bc0de")
}

func TestGetEmbeddedTheme_NotFound(t *testing.T) {
	data, found := GetEmbeddedTheme("nonexistent")
	assert.False(t, found)
	assert.Empty(t, data)
}

func TestListEmbeddedThemes(t *testing.T) {
	themes := ListEmbeddedThemes()

	assert.Len(t, themes, 3)
	assert.Contains(t, themes, "bootstrap")
	assert.Contains(t, themes, "catppuccin")
	assert.Contains(t, themes, "minimal")
}

func TestEmbeddedThemesParse(t *testing.T) {
	for _, name := range ListEmbeddedThemes() {
		t.Run(name, func(t *testing.T) {
			data, found := GetEmbeddedTheme(name)
			require.True(t, found)

			th, err := Parse(name, data)
			require.NoError(t, err)

			_, ok := th.Lookup(model.KindLog)
			assert.True(t, ok, "every bundled theme must define the log fallback")
		})
	}
}

func TestDefault(t *testing.T) {
	th := Default()
	assert.Equal(t, DefaultThemeName, th.Name)
	assert.True(t, th.IsBundled)
	assert.Equal(t, 16, th.FontSize)
	assert.Equal(t, model.AllKinds(), th.Kinds())

	expected := map[model.Kind]uint32{
		model.KindLog:     0x363636,
		model.KindInfo:    0x5bc0de,
		model.KindWarning: 0xf0ad4e,
		model.KindError:   0xd9534f,
		model.KindSuccess: 0x5cb85c,
	}
	for kind, bg := range expected {
		pair, ok := th.Lookup(kind)
		require.True(t, ok, kind.String())
		assert.Equal(t, bg, Pixel(pair.Background), kind.String())
		assert.Equal(t, uint32(0xffffff), Pixel(pair.Foreground), kind.String())
	}
}

func TestIsEmbeddedTheme(t *testing.T) {
	assert.True(t, IsEmbeddedTheme("minimal"))
	assert.False(t, IsEmbeddedTheme("solarized"))
}
