package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/lixenwraith/gridscout/board"
	"github.com/lixenwraith/gridscout/grid"
)

var (
	ErrNoStepFunction = errors.New("script does not define step(row, col, target_row, target_col)")
	ErrIllegalStep    = errors.New("script step is not a neighboring cell")
)

// Script is an agent whose moves are chosen by a Lua step function
//
// The script sees:
//
//	width, height        map dimensions
//	blocked(row, col)    true for obstacles and cells outside the map
//	step(row, col, target_row, target_col) -> row, col
//
// Returning the current cell (or nil) is a heartbeat. Moves further than one
// cell are rejected; moves off the map are reported as-is so the board can
// refuse them
type Script struct {
	m      grid.Map
	name   string
	source string
	cfg    WalkerConfig
}

// NewScript wraps Lua source
func NewScript(m grid.Map, name, source string, cfg WalkerConfig) *Script {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Energy <= 0 {
		cfg.Energy = DefaultEnergy
	}
	return &Script{m: m, name: name, source: source, cfg: cfg}
}

// LoadScript reads a Lua file
func LoadScript(m grid.Map, path string, cfg WalkerConfig) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return NewScript(m, filepath.Base(path), string(raw), cfg), nil
}

// Name returns the script's display name
func (s *Script) Name() string { return s.name }

// newState prepares a Lua state with the map helpers and the script loaded
func (s *Script) newState(ctx context.Context) (*lua.LState, *lua.LFunction, error) {
	L := lua.NewState()
	L.SetContext(ctx)

	L.SetGlobal("width", lua.LNumber(s.m.Width()))
	L.SetGlobal("height", lua.LNumber(s.m.Height()))
	L.SetGlobal("blocked", L.NewFunction(func(L *lua.LState) int {
		c := grid.Coord{Row: L.CheckInt(1), Col: L.CheckInt(2)}
		L.Push(lua.LBool(s.m.Classify(c) == grid.Obstacle))
		return 1
	}))

	if err := L.DoString(s.source); err != nil {
		L.Close()
		return nil, nil, fmt.Errorf("load %s: %w", s.name, err)
	}
	fn, ok := L.GetGlobal("step").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, nil, fmt.Errorf("%s: %w", s.name, ErrNoStepFunction)
	}
	return L, fn, nil
}

// Validate loads the script once without running it
func (s *Script) Validate() error {
	L, _, err := s.newState(context.Background())
	if err != nil {
		return err
	}
	L.Close()
	return nil
}

// Start runs the script from start until it stands on end
func (s *Script) Start(ctx context.Context, start, end grid.Coord, obs board.PositionObserver) error {
	L, fn, err := s.newState(ctx)
	if err != nil {
		return err
	}
	defer L.Close()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	energy := s.cfg.Energy
	cur := start
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if cur == end {
			obs.OnPositionUpdated(cur, cur, true, energy)
			return nil
		}
		if energy == 0 {
			return fmt.Errorf("%w at %s", ErrExhausted, cur)
		}

		next, err := s.call(L, fn, cur, end)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if dr, dc := next.Row-cur.Row, next.Col-cur.Col; dr < -1 || dr > 1 || dc < -1 || dc > 1 {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalStep, cur, next)
		}
		if next != cur {
			energy--
		}

		reached := next == end
		obs.OnPositionUpdated(cur, next, reached, energy)
		if reached {
			return nil
		}
		cur = next
	}
}

// call invokes step and reads back (row, col); nil results keep the agent in place
func (s *Script) call(L *lua.LState, fn *lua.LFunction, cur, end grid.Coord) (grid.Coord, error) {
	err := L.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true},
		lua.LNumber(cur.Row), lua.LNumber(cur.Col), lua.LNumber(end.Row), lua.LNumber(end.Col))
	if err != nil {
		return cur, fmt.Errorf("%s step: %w", s.name, err)
	}
	row, col := L.Get(-2), L.Get(-1)
	L.Pop(2)

	if row == lua.LNil && col == lua.LNil {
		return cur, nil
	}
	r, okR := row.(lua.LNumber)
	c, okC := col.(lua.LNumber)
	if !okR || !okC {
		return cur, fmt.Errorf("%s step: expected two numbers, got %s and %s", s.name, row.Type(), col.Type())
	}
	return grid.Coord{Row: int(r), Col: int(c)}, nil
}
