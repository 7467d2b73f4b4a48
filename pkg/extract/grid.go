package extract

// cell addresses one triangle on the board lattice.
type cell struct {
	Col, Row int
}

// pointsUp reports the triangle orientation at a grid position.
// Orientation alternates in both directions, checkerboard style.
func pointsUp(col, row int) bool {
	return (col+row)%2 == 0
}

// grid maps lattice cells onto pixel coordinates of the board area.
type grid struct {
	columns, rows    int
	cellW, cellH     float64
	offsetX, offsetY float64
}

func newGrid(columns, rows, width, height, topInset, bottomInset int) grid {
	return grid{
		columns: columns,
		rows:    rows,
		cellW:   float64(width) / float64(columns),
		cellH:   float64(height-topInset-bottomInset) / float64(rows),
		offsetY: float64(topInset),
	}
}

// centroid returns the pixel sample point for a cell. The point is pulled
// toward the wide part of the triangle so small alignment errors still land
// inside it: an upward triangle has its mass at the bottom of its row, a
// downward one at the top.
func (g grid) centroid(c cell) (x, y int) {
	fx := g.offsetX + (float64(c.Col)+0.5)*g.cellW
	frac := 2.0 / 3.0
	if !pointsUp(c.Col, c.Row) {
		frac = 1.0 / 3.0
	}
	fy := g.offsetY + (float64(c.Row)+frac)*g.cellH
	return int(fx), int(fy)
}

// neighbors appends the edge-sharing neighbors of a cell to buf and returns
// the result. Cells sharing only a corner are not neighbors.
func (g grid) neighbors(c cell, buf []cell) []cell {
	buf = buf[:0]
	if c.Col > 0 {
		buf = append(buf, cell{c.Col - 1, c.Row})
	}
	if c.Col < g.columns-1 {
		buf = append(buf, cell{c.Col + 1, c.Row})
	}
	if pointsUp(c.Col, c.Row) {
		if c.Row < g.rows-1 {
			buf = append(buf, cell{c.Col, c.Row + 1})
		}
	} else if c.Row > 0 {
		buf = append(buf, cell{c.Col, c.Row - 1})
	}
	return buf
}

// index returns the row-major index of a cell.
func (g grid) index(c cell) int {
	return c.Row*g.columns + c.Col
}
