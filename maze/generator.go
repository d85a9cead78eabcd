package maze

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lixenwraith/gridscout/grid"
	"github.com/lixenwraith/gridscout/navigation"
)

// Config controls maze generation
type Config struct {
	Width, Height int

	// Braiding: 0.0 (perfect maze, a tree) to 1.0 (no dead ends)
	// Higher values add cycles; plaza and pillar constraints take precedence
	Braiding float64

	Seed int64 // 0 = time based
	Name string
}

// Result is a generated map with suggested endpoints
type Result struct {
	Layout       *grid.Layout
	Start, End   grid.Coord
	SolutionPath []grid.Coord // Nil when End is unreachable from Start
	Seed         int64
}

// carver holds the wall matrix while a maze is cut
type carver struct {
	rows, cols int
	wall       [][]bool
	rng        *rand.Rand
}

var (
	jumps = [4]grid.Coord{{Row: -2}, {Row: 2}, {Col: -2}, {Col: 2}}
	ortho = [4]grid.Coord{{Row: -1}, {Row: 1}, {Col: -1}, {Col: 1}}
)

// Generate creates a stochastic maze layout
// Dimensions below 3 are raised to 3, even dimensions are rounded down to odd
func Generate(cfg Config) (Result, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	c := &carver{
		rows: ensureOdd(cfg.Height),
		cols: ensureOdd(cfg.Width),
		rng:  rand.New(rand.NewSource(seed)),
	}
	c.wall = make([][]bool, c.rows)
	for r := range c.wall {
		c.wall[r] = make([]bool, c.cols)
		for col := range c.wall[r] {
			c.wall[r][col] = true
		}
	}

	start := grid.Coord{Row: 1, Col: 1}
	end := grid.Coord{Row: c.rows - 2, Col: c.cols - 2}

	c.backtrack(start)
	if cfg.Braiding > 0 {
		c.braid(cfg.Braiding)
	}

	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("maze-%d", seed)
	}
	layout, err := grid.NewLayout(name, c.wall)
	if err != nil {
		return Result{}, err
	}

	res := Result{Layout: layout, Start: start, End: end, Seed: seed}
	field := navigation.NewFlowField(layout, false)
	if field.Compute(end) {
		res.SolutionPath = field.Path(start)
	}
	return res, nil
}

func (c *carver) open(p grid.Coord) bool {
	return p.Row >= 0 && p.Row < c.rows && p.Col >= 0 && p.Col < c.cols && !c.wall[p.Row][p.Col]
}

func (c *carver) isWall(p grid.Coord) bool {
	return p.Row >= 0 && p.Row < c.rows && p.Col >= 0 && p.Col < c.cols && c.wall[p.Row][p.Col]
}

// backtrack carves a uniform spanning tree over odd cells (recursive backtracker, iterative)
func (c *carver) backtrack(from grid.Coord) {
	stack := []grid.Coord{from}
	c.wall[from.Row][from.Col] = false

	candidates := make([]grid.Coord, 0, 4)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		candidates = candidates[:0]
		for _, d := range jumps {
			n := grid.Coord{Row: cur.Row + d.Row, Col: cur.Col + d.Col}
			// Keep a one cell wall border
			if n.Row > 0 && n.Row < c.rows-1 && n.Col > 0 && n.Col < c.cols-1 && c.wall[n.Row][n.Col] {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		d := candidates[c.rng.Intn(len(candidates))]
		c.wall[cur.Row+d.Row/2][cur.Col+d.Col/2] = false
		next := grid.Coord{Row: cur.Row + d.Row, Col: cur.Col + d.Col}
		c.wall[next.Row][next.Col] = false
		stack = append(stack, next)
	}
}

// braid opens walls next to dead ends with the given probability
func (c *carver) braid(probability float64) {
	for r := 1; r < c.rows-1; r += 2 {
		for col := 1; col < c.cols-1; col += 2 {
			cell := grid.Coord{Row: r, Col: col}
			if c.wall[r][col] || c.exits(cell) != 1 || c.rng.Float64() >= probability {
				continue
			}

			var candidates []grid.Coord
			for _, d := range jumps {
				n := grid.Coord{Row: r + d.Row, Col: col + d.Col}
				w := grid.Coord{Row: r + d.Row/2, Col: col + d.Col/2}
				if c.open(n) && c.wall[w.Row][w.Col] && c.safeToRemove(w) {
					candidates = append(candidates, w)
				}
			}
			if len(candidates) > 0 {
				w := candidates[c.rng.Intn(len(candidates))]
				c.wall[w.Row][w.Col] = false
			}
		}
	}
}

func (c *carver) exits(p grid.Coord) int {
	n := 0
	for _, d := range ortho {
		if c.open(grid.Coord{Row: p.Row + d.Row, Col: p.Col + d.Col}) {
			n++
		}
	}
	return n
}

// safeToRemove rejects removals that would create a 2x2 open plaza or an isolated wall pillar
func (c *carver) safeToRemove(w grid.Coord) bool {
	at := func(dr, dc int) bool { return c.open(grid.Coord{Row: w.Row + dr, Col: w.Col + dc}) }

	if (at(-1, -1) && at(-1, 0) && at(0, -1)) ||
		(at(-1, 0) && at(-1, 1) && at(0, 1)) ||
		(at(0, -1) && at(1, -1) && at(1, 0)) ||
		(at(0, 1) && at(1, 0) && at(1, 1)) {
		return false
	}

	for _, d := range ortho {
		n := grid.Coord{Row: w.Row + d.Row, Col: w.Col + d.Col}
		if !c.isWall(n) {
			continue
		}
		links := 0
		for _, d2 := range ortho {
			nn := grid.Coord{Row: n.Row + d2.Row, Col: n.Col + d2.Col}
			if nn != w && c.isWall(nn) {
				links++
			}
		}
		if links == 0 {
			return false
		}
	}
	return true
}

func ensureOdd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}
