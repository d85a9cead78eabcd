package engine

import (
	"errors"

	"github.com/lixenwraith/gridscout/board"
	"github.com/lixenwraith/gridscout/event"
)

// placementHandler routes user intent to the placement state machine
type placementHandler struct{}

func (placementHandler) EventTypes() []event.EventType {
	return []event.EventType{event.EventClick, event.EventRun, event.EventReset}
}

func (placementHandler) HandleEvent(e *Engine, ev event.Event) {
	switch ev.Type {
	case event.EventClick:
		p := ev.Payload.(*event.ClickPayload)
		if err := e.board.HandleClick(p.At); err != nil {
			e.reject(err)
		}

	case event.EventRun:
		if e.board.RunState() == board.Running {
			return
		}
		if err := e.board.Run(); err != nil {
			e.reject(err)
			return
		}
		e.startRun()

	case event.EventReset:
		e.stopRun()
		e.board.Reset()
	}
}

// updateHandler applies agent notifications for the current generation
type updateHandler struct{}

func (updateHandler) EventTypes() []event.EventType {
	return []event.EventType{event.EventPositionUpdate}
}

func (updateHandler) HandleEvent(e *Engine, ev event.Event) {
	p := ev.Payload.(*event.PositionUpdatePayload)
	if p.Generation != e.generation {
		e.logger.Printf("stale update from run %d (current %d)", p.Generation, e.generation)
		return
	}

	err := e.board.HandleUpdate(board.Update{
		Old:           p.Old,
		Current:       p.Current,
		TargetReached: p.TargetReached,
		Energy:        p.Energy,
	})
	if err == nil {
		return
	}

	// Contract violation: end the run, cells stay as they were
	e.logger.Printf("run %d: %v", p.Generation, err)
	if errors.Is(err, board.ErrOutOfBounds) {
		e.stopRun()
		e.board.Halt(err)
	}
	if e.alert != nil {
		e.alert.Alert(err.Error())
	}
}
