package grid

import "fmt"

// Coord addresses one cell, 0-indexed
type Coord struct {
	Row, Col int
}

// String formats as [row, col], the form used in log notices
func (c Coord) String() string {
	return fmt.Sprintf("[%d, %d]", c.Row, c.Col)
}

// Class is the static classification of a cell
type Class uint8

const (
	Free Class = iota
	Obstacle
)

func (c Class) String() string {
	switch c {
	case Free:
		return "Free"
	case Obstacle:
		return "Obstacle"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

// Map is the read-only map provider
// Dimensions and classification never change after construction
type Map interface {
	Width() int
	Height() int
	Classify(c Coord) Class
}

// InBounds reports whether c lies inside m
func InBounds(m Map, c Coord) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < m.Height() && c.Col < m.Width()
}

// Layout is the immutable Map implementation backed by a flat obstacle mask
type Layout struct {
	name      string
	width     int
	height    int
	obstacles []bool // row*width + col
}

// NewLayout builds a layout from a [row][col] obstacle grid
// Rows must all share the same length
func NewLayout(name string, blocked [][]bool) (*Layout, error) {
	if len(blocked) == 0 || len(blocked[0]) == 0 {
		return nil, fmt.Errorf("layout %q: empty grid", name)
	}
	h, w := len(blocked), len(blocked[0])
	l := &Layout{
		name:      name,
		width:     w,
		height:    h,
		obstacles: make([]bool, w*h),
	}
	for r, row := range blocked {
		if len(row) != w {
			return nil, fmt.Errorf("layout %q: row %d has %d cells, want %d", name, r, len(row), w)
		}
		copy(l.obstacles[r*w:(r+1)*w], row)
	}
	return l, nil
}

func (l *Layout) Name() string { return l.name }
func (l *Layout) Width() int   { return l.width }
func (l *Layout) Height() int  { return l.height }

// Classify returns Obstacle for out-of-bounds coordinates
func (l *Layout) Classify(c Coord) Class {
	if c.Row < 0 || c.Col < 0 || c.Row >= l.height || c.Col >= l.width {
		return Obstacle
	}
	if l.obstacles[c.Row*l.width+c.Col] {
		return Obstacle
	}
	return Free
}

// Blocked adapts the layout to (x, y) wall checks used by navigation
func (l *Layout) Blocked(x, y int) bool {
	return l.Classify(Coord{Row: y, Col: x}) == Obstacle
}

// Rows renders the layout back to its text form, '#' obstacle and '.' free
func (l *Layout) Rows() []string {
	rows := make([]string, l.height)
	buf := make([]byte, l.width)
	for r := 0; r < l.height; r++ {
		for c := 0; c < l.width; c++ {
			if l.obstacles[r*l.width+c] {
				buf[c] = GlyphObstacle
			} else {
				buf[c] = GlyphFree
			}
		}
		rows[r] = string(buf)
	}
	return rows
}
