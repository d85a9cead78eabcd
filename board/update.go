package board

import (
	"fmt"

	"github.com/lixenwraith/gridscout/grid"
)

// Update is one agent movement notification
type Update struct {
	Old, Current  grid.Coord
	TargetReached bool
	Energy        int
}

// HandleUpdate applies an agent notification
//
// Ignored unless Running. Out-of-bounds coordinates fail with ErrOutOfBounds
// before any cell is touched. A repeated reached update after the terminal
// notice is ignored, as is a heartbeat (Old == Current, not reached)
func (b *Board) HandleUpdate(u Update) error {
	if b.run != Running {
		return nil
	}
	if !grid.InBounds(b.m, u.Old) {
		return fmt.Errorf("%w: old %s", ErrOutOfBounds, u.Old)
	}
	if !grid.InBounds(b.m, u.Current) {
		return fmt.Errorf("%w: current %s", ErrOutOfBounds, u.Current)
	}

	switch {
	case u.TargetReached:
		if b.reached {
			return nil
		}
		b.reached = true
		b.cells.SetTarget(u.Current, false)
		b.moveAgent(u.Old, u.Current)
		b.renderer.Redraw(u.Old, u.Current)
		b.emit(Notice{
			Kind:   NoticeTargetReached,
			At:     u.Current,
			From:   u.Old,
			Energy: u.Energy,
			Text:   "Agent reached all targets.",
		})

	case u.Old != u.Current:
		b.moveAgent(u.Old, u.Current)
		b.renderer.Redraw(u.Old, u.Current)
		b.emit(Notice{
			Kind:   NoticeMoved,
			At:     u.Current,
			From:   u.Old,
			Energy: u.Energy,
			Text:   fmt.Sprintf("Agent moved from %s to %s (energy %d).", u.Old, u.Current, u.Energy),
		})
	}
	return nil
}

// OnPositionUpdated lets a Board be driven directly by a collaborator on the
// owning goroutine; contract violations halt the run
func (b *Board) OnPositionUpdated(old, current grid.Coord, targetReached bool, energy int) {
	err := b.HandleUpdate(Update{Old: old, Current: current, TargetReached: targetReached, Energy: energy})
	if err != nil {
		b.Halt(err)
	}
}
