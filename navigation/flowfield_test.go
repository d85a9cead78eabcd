package navigation

import (
	"testing"

	"github.com/lixenwraith/gridscout/grid"
)

func layout(t *testing.T, rows ...string) *grid.Layout {
	t.Helper()
	blocked := make([][]bool, len(rows))
	for r, row := range rows {
		blocked[r] = make([]bool, len(row))
		for c := range row {
			blocked[r][c] = row[c] == '#'
		}
	}
	l, err := grid.NewLayout("test", blocked)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestFlowField_CardinalPathAroundWall(t *testing.T) {
	m := layout(t,
		".....",
		".###.",
		".#...",
		".#.#.",
		"...#.",
	)
	f := NewFlowField(m, false)
	target := grid.Coord{Row: 2, Col: 2}
	if !f.Compute(target) {
		t.Fatal("Compute failed")
	}

	start := grid.Coord{Row: 0, Col: 0}
	path := f.Path(start)
	if path == nil {
		t.Fatal("Expected a path")
	}
	if path[0] != start || path[len(path)-1] != target {
		t.Fatalf("Path endpoints wrong: %v", path)
	}
	for i := 1; i < len(path); i++ {
		dr := path[i].Row - path[i-1].Row
		dc := path[i].Col - path[i-1].Col
		if dr*dr+dc*dc != 1 {
			t.Fatalf("Non-cardinal step %s -> %s", path[i-1], path[i])
		}
		if m.Classify(path[i]) == grid.Obstacle {
			t.Fatalf("Path crosses obstacle at %s", path[i])
		}
	}
	// Shortest route goes over the top: 4 right, 2 down, 2 left
	if len(path) != 9 {
		t.Errorf("Expected 9 cells, got %d: %v", len(path), path)
	}
	if d := f.Distance(start); d != 80 {
		t.Errorf("Expected distance 80, got %d", d)
	}
	t.Logf("✓ Path length %d", len(path))
}

func TestFlowField_Unreachable(t *testing.T) {
	m := layout(t,
		"..#..",
		"..#..",
		"..#..",
	)
	f := NewFlowField(m, true)
	if !f.Compute(grid.Coord{Row: 1, Col: 4}) {
		t.Fatal("Compute failed")
	}
	if f.Distance(grid.Coord{Row: 1, Col: 0}) != -1 {
		t.Error("Expected unreachable distance -1")
	}
	if f.Path(grid.Coord{Row: 1, Col: 0}) != nil {
		t.Error("Expected nil path")
	}
	if _, ok := f.Next(grid.Coord{Row: 1, Col: 0}); ok {
		t.Error("Next should fail on unreachable cell")
	}
}

func TestFlowField_InvalidTargets(t *testing.T) {
	m := layout(t, ".#", "..")
	f := NewFlowField(m, false)
	if f.Compute(grid.Coord{Row: 0, Col: 1}) {
		t.Error("Compute onto obstacle should fail")
	}
	if f.Compute(grid.Coord{Row: 5, Col: 5}) {
		t.Error("Compute out of bounds should fail")
	}
	if f.Valid() || f.Direction(grid.Coord{}) != DirNone {
		t.Error("Field should be invalid")
	}
}

func TestFlowField_DiagonalNoCornerCut(t *testing.T) {
	m := layout(t,
		".#",
		"#.",
	)
	f := NewFlowField(m, true)
	f.Compute(grid.Coord{Row: 1, Col: 1})
	if f.Distance(grid.Coord{Row: 0, Col: 0}) != -1 {
		t.Error("Diagonal squeeze between obstacles must be refused")
	}

	open := layout(t, "..", "..")
	g := NewFlowField(open, true)
	g.Compute(grid.Coord{Row: 1, Col: 1})
	if g.Direction(grid.Coord{Row: 0, Col: 0}) != DirSE {
		t.Errorf("Expected SE, got %d", g.Direction(grid.Coord{Row: 0, Col: 0}))
	}
	if g.Direction(grid.Coord{Row: 1, Col: 1}) != DirTarget {
		t.Error("Target cell should report DirTarget")
	}
}
