package systems

// Grid is a rows×cols buffer of particle tags stored row-major in one slice.
// Zero means empty. Callers get read-only access; only the owning
// WorldSpace writes to it.
type Grid struct {
	rows, cols int
	cells      []int
}

func newGrid(rows, cols int) *Grid {
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]int, rows*cols),
	}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// At returns the tag at (row, col), or 0 when out of range.
func (g *Grid) At(row, col int) int {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return 0
	}
	return g.cells[row*g.cols+col]
}

// Row copies one row into dst (grown as needed) and returns it.
func (g *Grid) Row(row int, dst []int) []int {
	dst = dst[:0]
	if row < 0 || row >= g.rows {
		return dst
	}
	return append(dst, g.cells[row*g.cols:(row+1)*g.cols]...)
}

// Occupied returns the number of non-empty cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, v := range g.cells {
		if v != 0 {
			n++
		}
	}
	return n
}

func (g *Grid) set(row, col, v int) {
	g.cells[row*g.cols+col] = v
}

func (g *Grid) clear() {
	clear(g.cells)
}
