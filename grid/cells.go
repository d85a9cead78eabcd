package grid

// Cell is the mutable per-cell state owned by the board
type Cell struct {
	HasAgent bool
	IsTarget bool
}

// Cells is a contiguous arena of Cell indexed by (row, col)
// Not safe for concurrent use; the owner serializes access
type Cells struct {
	width, height int
	cells         []Cell
}

// NewCells allocates a cleared arena for a width x height grid
func NewCells(width, height int) *Cells {
	return &Cells{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

func (c *Cells) index(at Coord) (int, bool) {
	if at.Row < 0 || at.Col < 0 || at.Row >= c.height || at.Col >= c.width {
		return 0, false
	}
	return at.Row*c.width + at.Col, true
}

// At returns the cell state, zero value when out of bounds
func (c *Cells) At(at Coord) Cell {
	if i, ok := c.index(at); ok {
		return c.cells[i]
	}
	return Cell{}
}

// SetAgent sets the agent flag, returns false when out of bounds
func (c *Cells) SetAgent(at Coord, v bool) bool {
	i, ok := c.index(at)
	if ok {
		c.cells[i].HasAgent = v
	}
	return ok
}

// SetTarget sets the target flag, returns false when out of bounds
func (c *Cells) SetTarget(at Coord, v bool) bool {
	i, ok := c.index(at)
	if ok {
		c.cells[i].IsTarget = v
	}
	return ok
}

// Clear resets every flag
func (c *Cells) Clear() {
	clear(c.cells)
}

// Count returns how many cells match pred
func (c *Cells) Count(pred func(Cell) bool) int {
	n := 0
	for _, cell := range c.cells {
		if pred(cell) {
			n++
		}
	}
	return n
}
