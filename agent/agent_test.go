package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/gridscout/grid"
)

type update struct {
	old, cur grid.Coord
	reached  bool
	energy   int
}

type collector struct {
	mu      sync.Mutex
	updates []update
}

func (c *collector) OnPositionUpdated(old, cur grid.Coord, reached bool, energy int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, update{old, cur, reached, energy})
}

func (c *collector) reachedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, u := range c.updates {
		if u.reached {
			n++
		}
	}
	return n
}

func layout(t *testing.T, rows ...string) *grid.Layout {
	t.Helper()
	blocked := make([][]bool, len(rows))
	for r, row := range rows {
		blocked[r] = make([]bool, len(row))
		for c := range row {
			blocked[r][c] = row[c] == '#'
		}
	}
	l, err := grid.NewLayout("agent", blocked)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

var fast = WalkerConfig{Interval: time.Millisecond}

func TestWalker_ReachesTargetOnce(t *testing.T) {
	m := layout(t,
		".....",
		"####.",
		".....",
	)
	w := NewWalker(m, fast)
	obs := &collector{}
	start, end := grid.Coord{Row: 0, Col: 0}, grid.Coord{Row: 2, Col: 0}

	if err := w.Start(context.Background(), start, end, obs); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if obs.reachedCount() != 1 {
		t.Fatalf("Expected reached exactly once, got %d", obs.reachedCount())
	}
	// 4 right, 2 down, 4 left
	if len(obs.updates) != 10 {
		t.Errorf("Expected 10 steps, got %d", len(obs.updates))
	}
	prev := start
	for i, u := range obs.updates {
		if u.old != prev {
			t.Fatalf("Step %d: old %s does not chain from %s", i, u.old, prev)
		}
		if m.Classify(u.cur) == grid.Obstacle {
			t.Fatalf("Step %d walked into obstacle %s", i, u.cur)
		}
		prev = u.cur
	}
	last := obs.updates[len(obs.updates)-1]
	if !last.reached || last.cur != end || last.energy != DefaultEnergy-10 {
		t.Errorf("Unexpected final update %+v", last)
	}
	t.Logf("✓ Walked %d steps", len(obs.updates))
}

func TestWalker_Unreachable(t *testing.T) {
	m := layout(t, ".#.", ".#.")
	err := NewWalker(m, fast).Start(context.Background(), grid.Coord{}, grid.Coord{Row: 0, Col: 2}, &collector{})
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("Expected ErrUnreachable, got %v", err)
	}
}

func TestWalker_Exhausted(t *testing.T) {
	m := layout(t, "......")
	obs := &collector{}
	err := NewWalker(m, WalkerConfig{Interval: time.Millisecond, Energy: 2}).
		Start(context.Background(), grid.Coord{}, grid.Coord{Row: 0, Col: 5}, obs)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Expected ErrExhausted, got %v", err)
	}
	if len(obs.updates) != 2 || obs.reachedCount() != 0 {
		t.Errorf("Unexpected updates %+v", obs.updates)
	}
}

func TestWalker_Cancel(t *testing.T) {
	m := layout(t, "......")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewWalker(m, WalkerConfig{Interval: time.Hour}).Start(ctx, grid.Coord{}, grid.Coord{Row: 0, Col: 5}, &collector{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

const greedy = `
function step(r, c, tr, tc)
  if r < tr and not blocked(r + 1, c) then return r + 1, c end
  if r > tr and not blocked(r - 1, c) then return r - 1, c end
  if c < tc and not blocked(r, c + 1) then return r, c + 1 end
  if c > tc and not blocked(r, c - 1) then return r, c - 1 end
  return r, c
end
`

func TestScript_Greedy(t *testing.T) {
	m := layout(t, "...", "...", "...")
	s := NewScript(m, "greedy", greedy, fast)
	obs := &collector{}
	if err := s.Start(context.Background(), grid.Coord{}, grid.Coord{Row: 2, Col: 2}, obs); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(obs.updates) != 4 || obs.reachedCount() != 1 {
		t.Fatalf("Unexpected updates %+v", obs.updates)
	}
	if first := obs.updates[0]; first.cur != (grid.Coord{Row: 1, Col: 0}) {
		t.Errorf("First step went to %s", first.cur)
	}
}

func TestScript_SeesMapGlobals(t *testing.T) {
	m := layout(t, ".#..")
	src := `
function step(r, c, tr, tc)
  if width ~= 4 or height ~= 1 then error("bad dimensions") end
  if not blocked(0, 1) or not blocked(5, 5) then error("bad blocked") end
  return tr, tc
end
`
	obs := &collector{}
	err := NewScript(m, "globals", src, fast).Start(context.Background(), grid.Coord{}, grid.Coord{Row: 0, Col: 1}, obs)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if obs.reachedCount() != 1 {
		t.Error("Expected reached")
	}
}

func TestScript_Errors(t *testing.T) {
	m := layout(t, "....", "....")
	ctx := context.Background()

	if err := NewScript(m, "none", "x = 1", fast).Validate(); !errors.Is(err, ErrNoStepFunction) {
		t.Errorf("Expected ErrNoStepFunction, got %v", err)
	}
	if err := NewScript(m, "syntax", "function step(", fast).Validate(); err == nil {
		t.Error("Expected syntax error")
	}

	teleport := `function step(r, c, tr, tc) return tr, tc end`
	err := NewScript(m, "teleport", teleport, fast).Start(ctx, grid.Coord{}, grid.Coord{Row: 1, Col: 3}, &collector{})
	if !errors.Is(err, ErrIllegalStep) {
		t.Errorf("Expected ErrIllegalStep, got %v", err)
	}

	bad := `function step(r, c, tr, tc) return "x", c end`
	if err := NewScript(m, "bad", bad, fast).Start(ctx, grid.Coord{}, grid.Coord{Row: 1, Col: 3}, &collector{}); err == nil {
		t.Error("Expected type error")
	}
}

func TestScript_OffMapStepIsReported(t *testing.T) {
	m := layout(t, "..", "..")
	src := `
function step(r, c, tr, tc)
  if r == -1 then return nil end
  return r - 1, c
end
`
	obs := &collector{}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := NewScript(m, "escape", src, fast).Start(ctx, grid.Coord{}, grid.Coord{Row: 1, Col: 1}, obs)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline, got %v", err)
	}
	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.updates) == 0 || obs.updates[0].cur != (grid.Coord{Row: -1, Col: 0}) {
		t.Fatalf("Off-map step not reported: %+v", obs.updates)
	}
	// Later calls are heartbeats
	for _, u := range obs.updates[1:] {
		if u.old != u.cur {
			t.Fatalf("Expected heartbeat, got %+v", u)
		}
	}
}

func TestScript_CancelStopsRunawayLoop(t *testing.T) {
	m := layout(t, "..")
	src := `function step(r, c, tr, tc) while true do end end`
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- NewScript(m, "spin", src, fast).Start(ctx, grid.Coord{}, grid.Coord{Row: 0, Col: 1}, &collector{})
	}()
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected deadline, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Runaway script not interrupted")
	}
}

func TestLoadScript(t *testing.T) {
	m := layout(t, "..")
	path := filepath.Join(t.TempDir(), "greedy.lua")
	if err := os.WriteFile(path, []byte(greedy), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScript(m, path, fast)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "greedy.lua" || s.Validate() != nil {
		t.Errorf("Unexpected script %q", s.Name())
	}
	if _, err := LoadScript(m, filepath.Join(t.TempDir(), "missing.lua"), fast); err == nil {
		t.Error("Expected read error")
	}
}
