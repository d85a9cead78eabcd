package render

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gridscout/board"
	"github.com/lixenwraith/gridscout/eventlog"
	"github.com/lixenwraith/gridscout/grid"
)

// Button is a clickable control in the button bar
type Button int

const (
	ButtonStart Button = iota
	ButtonReset
	ButtonQuit
)

var buttonLabels = [...]string{
	ButtonStart: "[Start]",
	ButtonReset: "[Reset]",
	ButtonQuit:  "[Quit]",
}

func (b Button) String() string {
	if int(b) >= 0 && int(b) < len(buttonLabels) {
		return buttonLabels[b]
	}
	return fmt.Sprintf("Button(%d)", int(b))
}

// Layout constants, in terminal cells
const (
	gridX      = 1 // Left edge of the grid pane
	gridY      = 2 // Top edge of the grid pane
	cellWidth  = 2 // Terminal columns per grid cell
	logGap     = 3 // Columns between grid pane and log pane
	minLogRows = 6
)

// Cell glyphs, two columns each
var (
	glyphFree     = [2]rune{'·', ' '}
	glyphObstacle = [2]rune{'█', '█'}
	glyphAgent    = [2]rune{'@', ' '}
	glyphTarget   = [2]rune{'◎', ' '}
	glyphReached  = [2]rune{'@', '!'}
)

// View draws the board on a tcell screen
//
// Layout:
//
//	title
//	grid pane (2 columns per cell)   | log pane
//	[Start] [Reset] [Quit]
//	alert line
//	status line
//
// Redraw, Log and Alert are called on the engine goroutine; CellAt and
// ButtonAt only read fixed geometry and are safe from the input goroutine
type View struct {
	mu     sync.Mutex
	screen tcell.Screen
	board  *board.Board
	title  string
	log    *eventlog.Log // Source of the log pane

	width, height int // Grid dimensions, fixed
	alert         string
	buttons       [len(buttonLabels)]span
}

// span is a horizontal hit area on one row
type span struct {
	y, x0, x1 int // x1 exclusive
}

// NewView creates a view over b whose log pane shows the tail of history
// The caller attaches it with b.SetRenderer(view) and subscribes view.Log to history
// A nil history leaves the log pane empty
func NewView(screen tcell.Screen, b *board.Board, history *eventlog.Log, title string) *View {
	if history == nil {
		history = eventlog.New(0, nil)
	}
	v := &View{
		screen: screen,
		board:  b,
		title:  title,
		log:    history,
		width:  b.Map().Width(),
		height: b.Map().Height(),
	}

	x := gridX
	y := v.buttonRow()
	for i, label := range buttonLabels {
		n := len([]rune(label))
		v.buttons[i] = span{y: y, x0: x, x1: x + n}
		x += n + 1
	}
	return v
}

func (v *View) buttonRow() int { return gridY + v.height + 1 }
func (v *View) alertRow() int  { return v.buttonRow() + 1 }
func (v *View) statusRow() int { return v.buttonRow() + 2 }
func (v *View) logX() int      { return gridX + v.width*cellWidth + logGap }

// CellAt maps a screen position to a grid coordinate
func (v *View) CellAt(x, y int) (grid.Coord, bool) {
	if x < gridX || y < gridY {
		return grid.Coord{}, false
	}
	c := grid.Coord{Row: y - gridY, Col: (x - gridX) / cellWidth}
	if c.Row >= v.height || c.Col >= v.width {
		return grid.Coord{}, false
	}
	return c, true
}

// ButtonAt maps a screen position to a button
func (v *View) ButtonAt(x, y int) (Button, bool) {
	for i, s := range v.buttons {
		if y == s.y && x >= s.x0 && x < s.x1 {
			return Button(i), true
		}
	}
	return 0, false
}

// CellOrigin returns the screen position of the left column of c
func (v *View) CellOrigin(c grid.Coord) (x, y int) {
	return gridX + c.Col*cellWidth, gridY + c.Row
}

// ButtonOrigin returns the screen position of the first column of b
func (v *View) ButtonOrigin(b Button) (x, y int) {
	s := v.buttons[b]
	return s.x0, s.y
}

// Redraw implements board.Renderer; no cells means repaint everything
func (v *View) Redraw(cells ...grid.Coord) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(cells) == 0 {
		v.drawAll()
	} else {
		for _, c := range cells {
			v.drawCell(c)
		}
		v.drawStatus()
	}
	v.screen.Show()
}

// Log repaints the log pane after history recorded n; a successful action clears the alert line
func (v *View) Log(board.Notice) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.alert = ""
	v.drawAlert()
	v.drawLog()
	v.drawStatus()
	v.screen.Show()
}

// Alert shows a rejected operation until the next notice
func (v *View) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.alert = msg
	v.drawAlert()
	v.screen.Show()
}

// Lines returns every retained log text, oldest first
func (v *View) Lines() []string { return v.log.Texts() }

func (v *View) drawAll() {
	v.screen.SetStyle(styleBase)
	v.screen.Clear()

	v.drawText(gridX, 0, styleTitle, v.title)
	for r := 0; r < v.height; r++ {
		for c := 0; c < v.width; c++ {
			v.drawCell(grid.Coord{Row: r, Col: c})
		}
	}
	for i, s := range v.buttons {
		v.drawText(s.x0, s.y, styleButton, buttonLabels[i])
	}
	v.drawAlert()
	v.drawStatus()
	v.drawLog()
}

func (v *View) drawCell(c grid.Coord) {
	if !grid.InBounds(v.board.Map(), c) {
		return
	}
	glyph, style := glyphFree, styleFree
	cell := v.board.Cell(c)
	switch {
	case v.board.Map().Classify(c) == grid.Obstacle:
		glyph, style = glyphObstacle, styleObstacle
	case cell.HasAgent && v.board.TargetReached():
		if at, ok := v.board.AgentPos(); ok && at == c {
			glyph, style = glyphReached, styleReached
		} else {
			glyph, style = glyphAgent, styleAgent
		}
	case cell.HasAgent:
		glyph, style = glyphAgent, styleAgent
	case cell.IsTarget:
		glyph, style = glyphTarget, styleTarget
	}
	x, y := v.CellOrigin(c)
	v.screen.SetContent(x, y, glyph[0], nil, style)
	v.screen.SetContent(x+1, y, glyph[1], nil, style)
}

func (v *View) drawStatus() {
	y := v.statusRow()
	v.clearRow(gridX, y, v.width*cellWidth)
	status := fmt.Sprintf("%s | %s", v.board.Phase(), v.board.RunState())
	if at, ok := v.board.AgentPos(); ok {
		status += " | agent " + at.String()
	}
	v.drawText(gridX, y, styleStatus, status)
}

func (v *View) drawAlert() {
	y := v.alertRow()
	w, _ := v.screen.Size()
	v.clearRow(gridX, y, w-gridX)
	if v.alert != "" {
		v.drawText(gridX, y, styleAlert, "! "+v.alert)
	}
}

func (v *View) drawLog() {
	x := v.logX()
	sw, sh := v.screen.Size()
	width := sw - x - 2
	if width <= 0 {
		return
	}
	rows := v.height
	if rows < minLogRows {
		rows = minLogRows
	}
	if limit := sh - gridY; rows > limit {
		rows = limit
	}
	if rows <= 0 {
		return
	}

	v.screen.SetContent(x-2, gridY-1, '┌', nil, styleBorder)
	v.drawText(x, gridY-1, styleBorder, "log")
	tail := v.log.Tail(rows)
	for i := 0; i < rows; i++ {
		y := gridY + i
		v.screen.SetContent(x-2, y, '│', nil, styleBorder)
		v.clearRow(x, y, width)
		if i < len(tail) {
			v.drawClipped(x, y, width, styleLog, tail[i].Notice.Text)
		}
	}
}

func (v *View) clearRow(x, y, n int) {
	for i := 0; i < n; i++ {
		v.screen.SetContent(x+i, y, ' ', nil, styleBase)
	}
}

func (v *View) drawText(x, y int, style tcell.Style, s string) int {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func (v *View) drawClipped(x, y, width int, style tcell.Style, s string) {
	runes := []rune(s)
	if len(runes) > width {
		runes = append(runes[:width-1], '…')
	}
	v.drawText(x, y, style, string(runes))
}
