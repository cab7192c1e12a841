package surface

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jmylchreest/histoast/internal/model"
)

// Metrics turns content into a pixel size using a fixed cell grid.
type Metrics struct {
	MinWidth   int
	MinHeight  int
	Padding    int
	CharWidth  int // Pixels per terminal cell
	LineHeight int
	MaxColumns int // Lines wider than this are wrapped
	IconSize   int // Square icon drawn left of the text, 0 = no icon column
}

// DefaultMetrics returns metrics with a 300x64 floor.
func DefaultMetrics() Metrics {
	return Metrics{
		MinWidth:   300,
		MinHeight:  64,
		Padding:    12,
		CharWidth:  9,
		LineHeight: 18,
		MaxColumns: 60,
		IconSize:   32,
	}
}

// Lines returns the content text split into display lines, wrapped at
// MaxColumns cells. East Asian wide runes count as two cells.
func (m Metrics) Lines(content model.Content) []string {
	text := strings.TrimRight(content.Text, "\n")
	if text == "" {
		return nil
	}
	if m.MaxColumns > 0 {
		text = runewidth.Wrap(text, m.MaxColumns)
	}
	return strings.Split(text, "\n")
}

// Size returns the minimum size for content.
func (m Metrics) Size(content model.Content) (int, int) {
	lines := m.Lines(content)

	columns := 0
	for _, line := range lines {
		columns = max(columns, runewidth.StringWidth(line))
	}

	w := columns*m.CharWidth + 2*m.Padding
	h := len(lines)*m.LineHeight + 2*m.Padding
	if content.Icon != "" && m.IconSize > 0 {
		w += m.IconSize + m.Padding
		h = max(h, m.IconSize+2*m.Padding)
	}

	return max(w, m.MinWidth), max(h, m.MinHeight)
}
