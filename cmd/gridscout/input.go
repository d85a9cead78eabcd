package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gridscout/event"
	"github.com/lixenwraith/gridscout/render"
)

// input translates terminal events into engine events
// Only the polling goroutine touches it
type input struct {
	view    *render.View
	pressed bool // Button1 held since the last event
}

// translate maps ev to an engine event; false when ev has no meaning here
func (in *input) translate(ev tcell.Event) (event.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return event.Event{Type: event.EventRefresh}, true

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return event.Event{Type: event.EventQuit}, true
		case tcell.KeyEnter:
			return event.Event{Type: event.EventRun}, true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 's', 'S':
				return event.Event{Type: event.EventRun}, true
			case 'r', 'R':
				return event.Event{Type: event.EventReset}, true
			case 'q', 'Q':
				return event.Event{Type: event.EventQuit}, true
			}
		}

	case *tcell.EventMouse:
		// Act on the press edge only; drags and releases are ignored
		down := ev.Buttons()&tcell.Button1 != 0
		edge := down && !in.pressed
		in.pressed = down
		if !edge {
			return event.Event{}, false
		}

		x, y := ev.Position()
		if c, ok := in.view.CellAt(x, y); ok {
			return event.Event{Type: event.EventClick, Payload: &event.ClickPayload{At: c}}, true
		}
		if b, ok := in.view.ButtonAt(x, y); ok {
			switch b {
			case render.ButtonStart:
				return event.Event{Type: event.EventRun}, true
			case render.ButtonReset:
				return event.Event{Type: event.EventReset}, true
			case render.ButtonQuit:
				return event.Event{Type: event.EventQuit}, true
			}
		}
	}
	return event.Event{}, false
}
