package tui

// Overlay geometry limits in terminal cells.
const (
	minInnerWidth   = 20
	maxInnerWidth   = 100
	defaultWidth    = 40
	minHistRows     = 2
	maxHistRows     = 12
	chromeRows      = 2 // control row plus status or toast line
	borderCellCount = 2
)

// geometry is the widget area inside the frame.
type geometry struct {
	width    int
	histRows int
}

// layout computes the widget area for a terminal of width x height. A zero
// size (before the first WindowSizeMsg) yields the defaults.
func layout(width, height, borderSize int) geometry {
	frame := 2 // horizontal padding
	if borderSize > 0 {
		frame += borderCellCount
	}

	g := geometry{width: defaultWidth, histRows: 4}
	if width > 0 {
		g.width = clampInt(width-frame, minInnerWidth, maxInnerWidth)
	}
	if height > 0 {
		rows := height - chromeRows
		if borderSize > 0 {
			rows -= borderCellCount
		}
		g.histRows = clampInt(rows, minHistRows, maxHistRows)
	}
	return g
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
