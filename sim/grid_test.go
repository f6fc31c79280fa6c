package sim

import "testing"

func TestNewGridDimensions(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCols int
		wantRows int
	}{
		{
			name:     "exact fit",
			opts:     Options{Left: 0, Right: 100, Bottom: 0, Top: 50, BinSize: 10},
			wantCols: 10,
			wantRows: 5,
		},
		{
			name:     "partial bins round up",
			opts:     Options{Left: 0, Right: 105, Bottom: 0, Top: 41, BinSize: 10},
			wantCols: 11,
			wantRows: 5,
		},
		{
			name:     "bin larger than world",
			opts:     Options{Left: 0, Right: 5, Bottom: 0, Top: 5, BinSize: 10},
			wantCols: 1,
			wantRows: 1,
		},
		{
			name:     "centered world",
			opts:     Options{Left: -50, Right: 50, Bottom: -25, Top: 25, BinSize: 10},
			wantCols: 10,
			wantRows: 5,
		},
		{
			name:     "degenerate bin size",
			opts:     Options{Left: 0, Right: 10, Bottom: 0, Top: 10, BinSize: 0},
			wantCols: 1,
			wantRows: 1,
		},
		{
			name:     "degenerate extents",
			opts:     Options{Left: 0, Right: -10, Bottom: 0, Top: -10, BinSize: 10},
			wantCols: 1,
			wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.opts)
			if g.Cols != tt.wantCols || g.Rows != tt.wantRows {
				t.Errorf("NewGrid = %dx%d, want %dx%d", g.Cols, g.Rows, tt.wantCols, tt.wantRows)
			}
		})
	}
}

func TestBinIDClamping(t *testing.T) {
	g := NewGrid(Options{Left: -50, Right: 50, Bottom: -25, Top: 25, BinSize: 10})

	tests := []struct {
		name    string
		x, y    float32
		wantCol int
		wantRow int
	}{
		{"interior", 0, 0, 5, 2},
		{"lower left corner", -50, -25, 0, 0},
		{"exactly on right edge", 50, 0, 9, 2},
		{"exactly on top edge", 0, 25, 5, 4},
		{"outside left", -200, 0, 0, 2},
		{"outside right", 200, 0, 9, 2},
		{"outside bottom", 0, -200, 5, 0},
		{"outside top", 0, 200, 5, 4},
		{"fractionally outside before wrap", 50.001, -25.001, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row := g.BinID(tt.x, tt.y)
			if col != tt.wantCol || row != tt.wantRow {
				t.Errorf("BinID(%g, %g) = (%d, %d), want (%d, %d)",
					tt.x, tt.y, col, row, tt.wantCol, tt.wantRow)
			}
		})
	}
}

func TestBinIndexFlattening(t *testing.T) {
	g := NewGrid(Options{Left: 0, Right: 40, Bottom: 0, Top: 30, BinSize: 10})
	if g.Cols != 4 || g.Rows != 3 {
		t.Fatalf("unexpected grid %dx%d", g.Cols, g.Rows)
	}

	// Index must be row*cols + col and stay within [0, BinCount)
	for _, pos := range []struct{ x, y float32 }{
		{5, 5}, {35, 25}, {0, 0}, {39.9, 29.9}, {-10, 100},
	} {
		col, row := g.BinID(pos.x, pos.y)
		want := row*g.Cols + col
		got := g.BinIndex(pos.x, pos.y)
		if got != want {
			t.Errorf("BinIndex(%g, %g) = %d, want %d", pos.x, pos.y, got, want)
		}
		if got < 0 || got >= g.BinCount() {
			t.Errorf("BinIndex(%g, %g) = %d out of range [0, %d)", pos.x, pos.y, got, g.BinCount())
		}
	}
}
