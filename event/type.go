package event

import "fmt"

// EventType identifies an event variant
type EventType int

const (
	// EventClick places start or target at a cell
	// Trigger: mouse click on the grid pane
	// Consumer: placement handler | Payload: *ClickPayload
	EventClick EventType = iota + 1

	// EventRun starts the search once both positions are placed
	// Trigger: Start button, 's' key
	// Consumer: placement handler | Payload: nil
	EventRun

	// EventReset clears placement and aborts any active run
	// Trigger: Reset button, 'r' key
	// Consumer: placement handler | Payload: nil
	EventReset

	// EventPositionUpdate carries an agent movement notification
	// Trigger: pathfinder collaborator via PositionObserver
	// Consumer: update handler | Payload: *PositionUpdatePayload
	EventPositionUpdate

	// EventRefresh requests a full repaint
	// Trigger: terminal resize
	// Consumer: view handler | Payload: nil
	EventRefresh

	// EventQuit stops the dispatcher
	// Trigger: Quit button, 'q' / Escape / Ctrl+C
	// Consumer: engine | Payload: nil
	EventQuit
)

// Event is a single queued event
type Event struct {
	Type    EventType
	Payload any
}

func (t EventType) String() string {
	if name, ok := typeToName[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}
