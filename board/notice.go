package board

import (
	"fmt"

	"github.com/lixenwraith/gridscout/grid"
)

// NoticeKind classifies log notices
type NoticeKind int

const (
	NoticeStartSet NoticeKind = iota
	NoticeTargetSet
	NoticeSearchStarted
	NoticeReset
	NoticeMoved
	NoticeTargetReached
	NoticeRunAborted
)

var noticeNames = [...]string{
	NoticeStartSet:      "StartSet",
	NoticeTargetSet:     "TargetSet",
	NoticeSearchStarted: "SearchStarted",
	NoticeReset:         "Reset",
	NoticeMoved:         "Moved",
	NoticeTargetReached: "TargetReached",
	NoticeRunAborted:    "RunAborted",
}

func (k NoticeKind) String() string {
	if int(k) >= 0 && int(k) < len(noticeNames) {
		return noticeNames[k]
	}
	return fmt.Sprintf("NoticeKind(%d)", int(k))
}

// Notice is one human-readable event emitted after a state change
// Text is what the log pane shows; the other fields are for programmatic sinks
type Notice struct {
	Kind   NoticeKind
	Text   string
	At     grid.Coord // Cell the notice refers to (destination for moves)
	From   grid.Coord // Origin for NoticeMoved
	Energy int        // Agent telemetry, passed through untouched
}

// Renderer is notified after every mutation with the cells to repaint
// No arguments means repaint everything
type Renderer interface {
	Redraw(cells ...grid.Coord)
}

// LogSink receives notices in order
type LogSink interface {
	Log(n Notice)
}

// PositionObserver is the agent-facing callback contract
type PositionObserver interface {
	OnPositionUpdated(old, current grid.Coord, targetReached bool, energy int)
}

type nopRenderer struct{}

func (nopRenderer) Redraw(...grid.Coord) {}

type nopLog struct{}

func (nopLog) Log(Notice) {}
