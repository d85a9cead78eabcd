package board

import (
	"fmt"

	"github.com/lixenwraith/gridscout/grid"
)

// Phase is the placement progress
type Phase int

const (
	AwaitingStart Phase = iota
	AwaitingEnd
	Locked
)

func (p Phase) String() string {
	switch p {
	case AwaitingStart:
		return "AwaitingStart"
	case AwaitingEnd:
		return "AwaitingEnd"
	case Locked:
		return "Locked"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// RunState gates whether agent updates are honored
type RunState int

const (
	Idle RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return "Running"
	}
	return "Idle"
}

// Board owns placement state and cell state for one map
//
// Board has no internal locking: every method must be called from the
// single goroutine that owns it (see engine.Engine)
type Board struct {
	m     grid.Map
	cells *grid.Cells

	// Placement
	startSet, endSet bool
	startPos, endPos grid.Coord

	// Run
	run      RunState
	agentPos grid.Coord // Valid while agentSet
	agentSet bool
	reached  bool // Terminal notice already emitted for this run

	renderer Renderer
	log      LogSink
}

// New creates a board in AwaitingStart/Idle
// Nil sinks are replaced with no-ops
func New(m grid.Map, r Renderer, l LogSink) *Board {
	if r == nil {
		r = nopRenderer{}
	}
	if l == nil {
		l = nopLog{}
	}
	return &Board{
		m:        m,
		cells:    grid.NewCells(m.Width(), m.Height()),
		renderer: r,
		log:      l,
	}
}

// SetRenderer swaps the renderer sink
func (b *Board) SetRenderer(r Renderer) {
	if r == nil {
		r = nopRenderer{}
	}
	b.renderer = r
}

// SetLog swaps the log sink
func (b *Board) SetLog(l LogSink) {
	if l == nil {
		l = nopLog{}
	}
	b.log = l
}

// ===== QUERIES =====

func (b *Board) Map() grid.Map { return b.m }

// Cell returns the mutable flags of one cell
func (b *Board) Cell(c grid.Coord) grid.Cell { return b.cells.At(c) }

// Phase derives placement progress from the set flags
func (b *Board) Phase() Phase {
	switch {
	case b.startSet && b.endSet:
		return Locked
	case b.startSet:
		return AwaitingEnd
	default:
		return AwaitingStart
	}
}

func (b *Board) RunState() RunState { return b.run }

// PositionsSet reports whether a run has been started with both endpoints placed
func (b *Board) PositionsSet() bool { return b.run == Running }

// StartPos returns the start coordinate once placed
func (b *Board) StartPos() (grid.Coord, bool) { return b.startPos, b.startSet }

// EndPos returns the target coordinate once placed
func (b *Board) EndPos() (grid.Coord, bool) { return b.endPos, b.endSet }

// AgentPos returns the cell currently holding the agent
func (b *Board) AgentPos() (grid.Coord, bool) { return b.agentPos, b.agentSet }

// TargetReached reports whether the terminal notice was emitted for the current run
func (b *Board) TargetReached() bool { return b.reached }

// ===== INTERNAL =====

func (b *Board) emit(n Notice) {
	b.log.Log(n)
}

// moveAgent keeps the single-agent invariant: the tracked cell is always cleared
func (b *Board) moveAgent(from, to grid.Coord) {
	b.cells.SetAgent(from, false)
	if b.agentSet && b.agentPos != from {
		b.cells.SetAgent(b.agentPos, false)
		b.renderer.Redraw(b.agentPos)
	}
	b.cells.SetAgent(to, true)
	b.agentPos = to
	b.agentSet = true
}
