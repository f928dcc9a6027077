package field

import "math"

// Grid maps between screen coordinates and cells. Cells are square, laid
// out row major with padding between them and centred in the surface.
type Grid struct {
	Size    int
	Cell    float64
	Padding float64
	OffsetX float64
	OffsetY float64
}

func NewGrid(size int, width, height, cell, padding float64) Grid {
	total := float64(size)*cell + float64(size-1)*padding
	return Grid{
		Size:    size,
		Cell:    cell,
		Padding: padding,
		OffsetX: (width - total) / 2,
		OffsetY: (height - total) / 2,
	}
}

func (g Grid) Contains(x, y int) bool {
	return x >= 0 && x < g.Size && y >= 0 && y < g.Size
}

// ScreenToCell returns the cell under a point. Points in the padding belong
// to the cell before them, points off the grid are rejected.
func (g Grid) ScreenToCell(sx, sy float64) (int, int, bool) {
	pitch := g.Cell + g.Padding
	if pitch <= 0 {
		return 0, 0, false
	}
	x := int(math.Floor((sx - g.OffsetX) / pitch))
	y := int(math.Floor((sy - g.OffsetY) / pitch))
	if !g.Contains(x, y) {
		return 0, 0, false
	}
	return x, y, true
}

// CellToScreen returns the centre of a cell.
func (g Grid) CellToScreen(x, y int) (float64, float64) {
	pitch := g.Cell + g.Padding
	return g.OffsetX + float64(x)*pitch + g.Cell/2, g.OffsetY + float64(y)*pitch + g.Cell/2
}
