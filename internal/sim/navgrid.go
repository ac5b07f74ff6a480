package sim

import "math"

// NavGrid is a 2D walkability grid where true = blocked. It is derived
// from the buildings of a World and rebuilt every tick.
type NavGrid struct {
	cols     int
	rows     int
	cellSize float64
	blocked  []bool
}

// NewNavGrid returns an empty grid of cols×rows cells.
func NewNavGrid(cols, rows int, cellSize float64) *NavGrid {
	return &NavGrid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		blocked:  make([]bool, cols*rows),
	}
}

// BuildNavGrid rasterises every building onto a fresh grid. Axis-aligned
// buildings block each cell their footprint overlaps; walls block each
// cell hit by samples taken every half cell along the segment.
func BuildNavGrid(cols, rows int, cellSize float64, buildings []*Building) *NavGrid {
	ng := NewNavGrid(cols, rows, cellSize)
	for _, b := range buildings {
		if b.IsWall() {
			ng.blockSegment(b.Pos, b.Angle, b.Length)
			continue
		}
		ng.blockRect(b.Bounds())
	}
	return ng
}

func (ng *NavGrid) blockRect(r Rect) {
	cMinX := max(0, int(math.Floor(r.Min.X/ng.cellSize)))
	cMinY := max(0, int(math.Floor(r.Min.Y/ng.cellSize)))
	// A box ending exactly on a cell edge does not reach into the next cell.
	cMaxX := min(ng.cols-1, int(math.Ceil(r.Max.X/ng.cellSize))-1)
	cMaxY := min(ng.rows-1, int(math.Ceil(r.Max.Y/ng.cellSize))-1)
	for cy := cMinY; cy <= cMaxY; cy++ {
		for cx := cMinX; cx <= cMaxX; cx++ {
			ng.blocked[cy*ng.cols+cx] = true
		}
	}
}

func (ng *NavGrid) blockSegment(center Vec2, angle, length float64) {
	dir := Vec2{math.Cos(angle), math.Sin(angle)}
	step := ng.cellSize / 2
	half := length / 2
	for t := -half; t < half; t += step {
		ng.Block(ng.WorldToCell(center.Add(dir.Scale(t))))
	}
	ng.Block(ng.WorldToCell(center.Add(dir.Scale(half))))
}

// Block marks a cell as unwalkable. Out-of-range cells are ignored.
func (ng *NavGrid) Block(cx, cy int) {
	if ng.InBounds(cx, cy) {
		ng.blocked[cy*ng.cols+cx] = true
	}
}

// InBounds reports whether (cx, cy) is a cell of the grid.
func (ng *NavGrid) InBounds(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < ng.cols && cy < ng.rows
}

// IsBlocked returns true if the cell at (cx, cy) is not walkable.
// Cells outside the grid count as blocked.
func (ng *NavGrid) IsBlocked(cx, cy int) bool {
	if !ng.InBounds(cx, cy) {
		return true
	}
	return ng.blocked[cy*ng.cols+cx]
}

// WorldToCell converts world coordinates to grid cell coordinates.
// Negative coordinates map to negative cells.
func (ng *NavGrid) WorldToCell(p Vec2) (int, int) {
	return int(math.Floor(p.X / ng.cellSize)), int(math.Floor(p.Y / ng.cellSize))
}

// CellToWorld converts grid cell coordinates to the world cell centre.
func (ng *NavGrid) CellToWorld(cx, cy int) Vec2 {
	return Vec2{(float64(cx) + 0.5) * ng.cellSize, (float64(cy) + 0.5) * ng.cellSize}
}

func (ng *NavGrid) Cols() int         { return ng.cols }
func (ng *NavGrid) Rows() int         { return ng.rows }
func (ng *NavGrid) CellSize() float64 { return ng.cellSize }

// BlockedCount is the number of blocked cells.
func (ng *NavGrid) BlockedCount() int {
	n := 0
	for _, b := range ng.blocked {
		if b {
			n++
		}
	}
	return n
}
