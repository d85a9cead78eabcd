package board

import (
	"fmt"

	"github.com/lixenwraith/gridscout/grid"
)

// HandleClick applies a user click to the placement state machine
//
//	AwaitingStart: click becomes the start, agent drawn there
//	AwaitingEnd:   click becomes the target unless it equals the start
//	Locked:        ignored until Reset
//
// Obstacle and duplicate clicks return an error and change nothing
func (b *Board) HandleClick(c grid.Coord) error {
	if !grid.InBounds(b.m, c) {
		return fmt.Errorf("%w: %s", ErrClickOutsideGrid, c)
	}
	if b.m.Classify(c) == grid.Obstacle {
		return fmt.Errorf("%w: %s", ErrObstacleClick, c)
	}

	switch b.Phase() {
	case AwaitingStart:
		b.startPos = c
		b.startSet = true
		b.cells.SetAgent(c, true)
		b.agentPos = c
		b.agentSet = true
		b.renderer.Redraw(c)
		b.emit(Notice{Kind: NoticeStartSet, At: c, Text: fmt.Sprintf("Start position set at %s.", c)})

	case AwaitingEnd:
		if c == b.startPos {
			return fmt.Errorf("%w: %s", ErrDuplicatePosition, c)
		}
		b.endPos = c
		b.endSet = true
		b.cells.SetTarget(c, true)
		b.renderer.Redraw(c)
		b.emit(Notice{Kind: NoticeTargetSet, At: c, Text: fmt.Sprintf("Target position set at %s.", c)})

	case Locked:
		// Frozen until Reset
	}
	return nil
}

// Run opens the board to agent updates
// Returns ErrPlacementIncomplete and stays Idle until both endpoints are placed
func (b *Board) Run() error {
	if b.Phase() != Locked {
		return ErrPlacementIncomplete
	}
	if b.run == Running {
		return nil
	}
	b.run = Running
	b.reached = false
	b.emit(Notice{Kind: NoticeSearchStarted, At: b.startPos, Text: "Search started."})
	return nil
}

// Reset clears placement and every cell flag, returning to AwaitingStart/Idle
func (b *Board) Reset() {
	b.startSet, b.endSet = false, false
	b.startPos, b.endPos = grid.Coord{}, grid.Coord{}
	b.agentPos, b.agentSet = grid.Coord{}, false
	b.run = Idle
	b.reached = false
	b.cells.Clear()
	b.renderer.Redraw()
	b.emit(Notice{Kind: NoticeReset, Text: "Positions have been reset."})
}

// Halt ends the current run after a collaborator failure
// Placement stays Locked so the user can inspect the grid and Reset
func (b *Board) Halt(reason error) {
	if b.run != Running {
		return
	}
	b.run = Idle
	b.emit(Notice{Kind: NoticeRunAborted, At: b.agentPos, Text: fmt.Sprintf("Run aborted: %v.", reason)})
}
