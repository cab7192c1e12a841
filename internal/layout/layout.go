// Package layout computes where stacked toasts go inside a work area.
//
// Toasts stack upwards from the bottom of the work area in insertion order:
// the oldest sits lowest and every newer toast is placed above the existing
// ones. Every toast reserves its height plus the spacing below it. All Y
// values are offsets from the top of the work area.
package layout

// Rect is a screen rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Placement is a stacked toast as the layout sees it.
type Placement struct {
	ID     string
	Y      int // Current offset
	Height int
}

// Move relocates one toast vertically.
type Move struct {
	ID    string
	FromY int
	ToY   int
}

// Used returns the vertical space reserved by toasts of the given heights.
func Used(heights []int, spacing int) int {
	total := 0
	for _, h := range heights {
		total += h + spacing
	}
	return total
}

// Admit returns the offset for a new toast of height h stacked above the
// active ones, and false when it would not fit inside the area.
func Admit(area Rect, activeHeights []int, h, spacing int) (int, bool) {
	baseY := area.Height - Used(activeHeights, spacing)
	y := baseY - (h + spacing)
	if y < 0 {
		return 0, false
	}
	return y, true
}

// Fits reports whether a toast of height h can ever fit in the area.
func Fits(area Rect, h, spacing int) bool {
	return h+spacing <= area.Height
}

// Targets returns the packed offset of every toast, in stacking order.
func Targets(area Rect, heights []int, spacing int) []int {
	targets := make([]int, len(heights))
	y := area.Height
	for i, h := range heights {
		y -= h + spacing
		targets[i] = y
	}
	return targets
}

// Moves returns the moves that pack current against the bottom of the area.
// Toasts already at their target are left out.
func Moves(area Rect, current []Placement, spacing int) []Move {
	heights := make([]int, len(current))
	for i, p := range current {
		heights[i] = p.Height
	}

	var moves []Move
	for i, y := range Targets(area, heights, spacing) {
		if current[i].Y != y {
			moves = append(moves, Move{ID: current[i].ID, FromY: current[i].Y, ToY: y})
		}
	}
	return moves
}
