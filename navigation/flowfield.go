package navigation

import "github.com/lixenwraith/gridscout/grid"

// Direction indexes into Directions; N=0, E=1, S=2, W=3, then diagonals NE=4, SE=5, SW=6, NW=7
type Direction int8

const (
	DirNone   Direction = -1 // Blocked or unreachable
	DirTarget Direction = -2 // At target cell
	DirN      Direction = 0
	DirE      Direction = 1
	DirS      Direction = 2
	DirW      Direction = 3
	DirNE     Direction = 4
	DirSE     Direction = 5
	DirSW     Direction = 6
	DirNW     Direction = 7
)

// Step vectors as (dRow, dCol), cardinals first
var steps = [8]grid.Coord{
	{Row: -1, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 0, Col: -1},
	{Row: -1, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: -1},
}

// Weighted edge costs: cardinal = 10, diagonal = 14 (≈10√2)
const (
	costCardinal    = 10
	costDiagonal    = 14
	costUnreachable = 1<<30 - 1
)

// --- Min-heap for Dijkstra ---

type heapEntry struct {
	idx  int // Flat grid index (row*width + col)
	dist int // Weighted distance from target
}

type minHeap []heapEntry

func (h *minHeap) push(e heapEntry) {
	*h = append(*h, e)
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if (*h)[parent].dist <= (*h)[i].dist {
			break
		}
		(*h)[parent], (*h)[i] = (*h)[i], (*h)[parent]
		i = parent
	}
}

func (h *minHeap) pop() heapEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]

	i := 0
	for {
		left := 2*i + 1
		if left >= len(*h) {
			break
		}
		smallest := left
		if right := left + 1; right < len(*h) && (*h)[right].dist < (*h)[left].dist {
			smallest = right
		}
		if (*h)[i].dist <= (*h)[smallest].dist {
			break
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
	return e
}

// FlowField stores precomputed steepest-descent directions toward one target
type FlowField struct {
	m         grid.Map
	width     int
	height    int
	diagonal  bool
	dirs      []Direction
	distances []int

	target grid.Coord
	valid  bool

	heap minHeap
}

// NewFlowField creates an empty field over m
// diagonal enables 8-way movement with corner-cutting prevention
func NewFlowField(m grid.Map, diagonal bool) *FlowField {
	size := m.Width() * m.Height()
	return &FlowField{
		m:         m,
		width:     m.Width(),
		height:    m.Height(),
		diagonal:  diagonal,
		dirs:      make([]Direction, size),
		distances: make([]int, size),
		heap:      make(minHeap, 0, size/4+1),
	}
}

func (f *FlowField) blocked(c grid.Coord) bool {
	return f.m.Classify(c) == grid.Obstacle
}

func (f *FlowField) dirCount() int {
	if f.diagonal {
		return 8
	}
	return 4
}

// cornerCut reports whether a diagonal step from c squeezes between two obstacles
func (f *FlowField) cornerCut(c grid.Coord, d int) bool {
	if d < 4 {
		return false
	}
	s := steps[d]
	return f.blocked(grid.Coord{Row: c.Row + s.Row, Col: c.Col}) || f.blocked(grid.Coord{Row: c.Row, Col: c.Col + s.Col})
}

// Compute runs weighted Dijkstra outward from target, then derives per-cell directions
// Returns false when target is outside the map or blocked
func (f *FlowField) Compute(target grid.Coord) bool {
	f.valid = false
	if !grid.InBounds(f.m, target) || f.blocked(target) {
		return false
	}

	w := f.width
	for i := range f.dirs {
		f.dirs[i] = DirNone
		f.distances[i] = costUnreachable
	}

	// Phase 1: Dijkstra
	targetIdx := target.Row*w + target.Col
	f.distances[targetIdx] = 0
	f.heap = f.heap[:0]
	f.heap.push(heapEntry{idx: targetIdx, dist: 0})

	n := f.dirCount()
	for len(f.heap) > 0 {
		entry := f.heap.pop()
		if entry.dist > f.distances[entry.idx] {
			continue // Stale entry
		}
		cur := grid.Coord{Row: entry.idx / w, Col: entry.idx % w}

		for d := 0; d < n; d++ {
			next := grid.Coord{Row: cur.Row + steps[d].Row, Col: cur.Col + steps[d].Col}
			if !grid.InBounds(f.m, next) || f.blocked(next) || f.cornerCut(cur, d) {
				continue
			}
			cost := costCardinal
			if d >= 4 {
				cost = costDiagonal
			}
			nIdx := next.Row*w + next.Col
			if nd := entry.dist + cost; nd < f.distances[nIdx] {
				f.distances[nIdx] = nd
				f.heap.push(heapEntry{idx: nIdx, dist: nd})
			}
		}
	}

	// Phase 2: steepest descent per cell
	f.dirs[targetIdx] = DirTarget
	for idx, dist := range f.distances {
		if dist >= costUnreachable || dist == 0 {
			continue
		}
		cur := grid.Coord{Row: idx / w, Col: idx % w}
		best, bestDist := DirNone, dist
		for d := 0; d < n; d++ {
			next := grid.Coord{Row: cur.Row + steps[d].Row, Col: cur.Col + steps[d].Col}
			if !grid.InBounds(f.m, next) || f.cornerCut(cur, d) {
				continue
			}
			if nd := f.distances[next.Row*w+next.Col]; nd < bestDist {
				best, bestDist = Direction(d), nd
			}
		}
		f.dirs[idx] = best
	}

	f.target = target
	f.valid = true
	return true
}

// Valid reports whether Compute succeeded
func (f *FlowField) Valid() bool { return f.valid }

// Target returns the cell the field flows toward
func (f *FlowField) Target() grid.Coord { return f.target }

// Direction returns the flow direction at c, DirNone if invalid/blocked/unreachable
func (f *FlowField) Direction(c grid.Coord) Direction {
	if !f.valid || !grid.InBounds(f.m, c) {
		return DirNone
	}
	return f.dirs[c.Row*f.width+c.Col]
}

// Distance returns weighted distance to target, -1 if unreachable
func (f *FlowField) Distance(c grid.Coord) int {
	if !f.valid || !grid.InBounds(f.m, c) {
		return -1
	}
	if d := f.distances[c.Row*f.width+c.Col]; d < costUnreachable {
		return d
	}
	return -1
}

// Next returns the neighbor one step closer to target
// ok is false at the target itself or when c cannot reach it
func (f *FlowField) Next(c grid.Coord) (grid.Coord, bool) {
	d := f.Direction(c)
	if d < 0 {
		return c, false
	}
	return grid.Coord{Row: c.Row + steps[d].Row, Col: c.Col + steps[d].Col}, true
}

// Path follows the field from c to the target, inclusive of both ends
// Returns nil when c cannot reach the target
func (f *FlowField) Path(c grid.Coord) []grid.Coord {
	if f.Distance(c) < 0 {
		return nil
	}
	path := []grid.Coord{c}
	for c != f.target {
		next, ok := f.Next(c)
		if !ok {
			return nil
		}
		path = append(path, next)
		c = next
	}
	return path
}
