package sim

import "math"

// Grid maps world positions to bins of a uniform spatial grid. It is a pure
// value type: bin lookups are arithmetic only, no allocation, called many
// times per step.
type Grid struct {
	Left, Bottom float32
	BinSize      float32
	Cols, Rows   int
}

// NewGrid derives grid dimensions from the options. Each axis is
// ceil(extent / binSize), clamped to at least 1 so degenerate options can
// never produce a zero-sized grid downstream.
func NewGrid(o Options) Grid {
	g := Grid{
		Left:    o.Left,
		Bottom:  o.Bottom,
		BinSize: o.BinSize,
		Cols:    1,
		Rows:    1,
	}
	if o.BinSize > 0 {
		if c := int(math.Ceil(float64(o.Width() / o.BinSize))); c > 1 {
			g.Cols = c
		}
		if r := int(math.Ceil(float64(o.Height() / o.BinSize))); r > 1 {
			g.Rows = r
		}
	}
	return g
}

// BinCount returns the number of bins in the grid.
func (g Grid) BinCount() int {
	return g.Cols * g.Rows
}

// BinID returns the per-axis bin coordinate for a position, clamped into
// range. Positions on or outside a boundary land in the nearest valid bin;
// the integrator may leave a periodic particle fractionally outside bounds
// within a step before wrap-around is applied.
func (g Grid) BinID(x, y float32) (col, row int) {
	col = int((x - g.Left) / g.BinSize)
	row = int((y - g.Bottom) / g.BinSize)
	if col < 0 {
		col = 0
	} else if col >= g.Cols {
		col = g.Cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.Rows {
		row = g.Rows - 1
	}
	return col, row
}

// BinIndex returns the flat bin index for a position.
func (g Grid) BinIndex(x, y float32) int {
	col, row := g.BinID(x, y)
	return row*g.Cols + col
}
