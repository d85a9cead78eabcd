package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gridscout/board"
	"github.com/lixenwraith/gridscout/eventlog"
	"github.com/lixenwraith/gridscout/grid"
)

func newTestView(t *testing.T) (*View, *board.Board, tcell.SimulationScreen) {
	v, b, screen, _ := newTestViewWithLog(t)
	return v, b, screen
}

func newTestViewWithLog(t *testing.T) (*View, *board.Board, tcell.SimulationScreen, *eventlog.Log) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(80, 20)
	t.Cleanup(screen.Fini)

	m, err := grid.NewLayout("view", [][]bool{
		{false, false, false},
		{false, true, false},
		{false, false, false},
	})
	if err != nil {
		t.Fatal(err)
	}
	history := eventlog.New(0, nil)
	b := board.New(m, nil, history)
	v := NewView(screen, b, history, "gridscout: view")
	b.SetRenderer(v)
	history.Subscribe(func(e eventlog.Entry) { v.Log(e.Notice) })
	return v, b, screen, history
}

// row reads one screen row as a string
func row(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r := cells[y*w+x].Runes
		if len(r) == 0 {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(r[0])
	}
	return sb.String()
}

func TestView_FullDraw(t *testing.T) {
	v, _, screen := newTestView(t)
	v.Redraw()

	if !strings.Contains(row(screen, 0), "gridscout: view") {
		t.Errorf("Title missing: %q", row(screen, 0))
	}
	x, y := v.CellOrigin(grid.Coord{Row: 1, Col: 1})
	if got := []rune(row(screen, y))[x]; got != '█' {
		t.Errorf("Obstacle glyph %q", got)
	}
	if !strings.Contains(row(screen, v.buttonRow()), "[Start] [Reset] [Quit]") {
		t.Errorf("Button bar missing: %q", row(screen, v.buttonRow()))
	}
	if !strings.Contains(row(screen, v.statusRow()), "AwaitingStart | Idle") {
		t.Errorf("Status missing: %q", row(screen, v.statusRow()))
	}
}

func TestView_PlacementAndLog(t *testing.T) {
	v, b, screen := newTestView(t)
	v.Redraw()

	start, end := grid.Coord{Row: 0, Col: 0}, grid.Coord{Row: 2, Col: 2}
	if err := b.HandleClick(start); err != nil {
		t.Fatal(err)
	}
	if err := b.HandleClick(end); err != nil {
		t.Fatal(err)
	}

	sx, sy := v.CellOrigin(start)
	ex, ey := v.CellOrigin(end)
	if got := []rune(row(screen, sy))[sx]; got != '@' {
		t.Errorf("Agent glyph %q", got)
	}
	if got := []rune(row(screen, ey))[ex]; got != '◎' {
		t.Errorf("Target glyph %q", got)
	}

	lines := v.Lines()
	if len(lines) != 2 || lines[0] != "Start position set at [0, 0]." {
		t.Fatalf("Unexpected log %v", lines)
	}
	if !strings.Contains(row(screen, gridY+1), "Target position set at [2, 2].") {
		t.Errorf("Log pane missing notice: %q", row(screen, gridY+1))
	}

	// Reach the target
	if err := b.Run(); err != nil {
		t.Fatal(err)
	}
	b.OnPositionUpdated(start, end, true, 3)
	if got := []rune(row(screen, ey))[ex : ex+2]; string(got) != "@!" {
		t.Errorf("Reached glyph %q", string(got))
	}
	if got := []rune(row(screen, sy))[sx]; got != '·' {
		t.Errorf("Old agent cell not cleared: %q", got)
	}
	t.Logf("✓ %d log lines", len(v.Lines()))
}

func TestView_AlertClearedByNotice(t *testing.T) {
	v, b, screen := newTestView(t)
	v.Redraw()

	v.Alert(board.ErrObstacleClick.Error())
	if !strings.Contains(row(screen, v.alertRow()), "obstacle cell") {
		t.Errorf("Alert missing: %q", row(screen, v.alertRow()))
	}

	b.HandleClick(grid.Coord{Row: 0, Col: 0})
	if strings.TrimSpace(row(screen, v.alertRow())) != "" {
		t.Errorf("Alert not cleared: %q", row(screen, v.alertRow()))
	}
}

func TestView_HitTesting(t *testing.T) {
	v, _, _ := newTestView(t)

	cases := []struct {
		x, y int
		want grid.Coord
		ok   bool
	}{
		{gridX, gridY, grid.Coord{Row: 0, Col: 0}, true},
		{gridX + 1, gridY, grid.Coord{Row: 0, Col: 0}, true},
		{gridX + 2, gridY + 1, grid.Coord{Row: 1, Col: 1}, true},
		{gridX + 5, gridY + 2, grid.Coord{Row: 2, Col: 2}, true},
		{gridX + 6, gridY, grid.Coord{}, false},
		{gridX, gridY + 3, grid.Coord{}, false},
		{0, gridY, grid.Coord{}, false},
		{gridX, 0, grid.Coord{}, false},
	}
	for _, tc := range cases {
		got, ok := v.CellAt(tc.x, tc.y)
		if ok != tc.ok || got != tc.want {
			t.Errorf("CellAt(%d,%d) = %s,%v want %s,%v", tc.x, tc.y, got, ok, tc.want, tc.ok)
		}
	}

	for _, b := range []Button{ButtonStart, ButtonReset, ButtonQuit} {
		x, y := v.ButtonOrigin(b)
		if got, ok := v.ButtonAt(x+1, y); !ok || got != b {
			t.Errorf("ButtonAt for %s returned %s,%v", b, got, ok)
		}
	}
	if _, ok := v.ButtonAt(0, 0); ok {
		t.Error("Title row should not be a button")
	}
}

func TestView_LogPaneShowsHistoryTail(t *testing.T) {
	v, _, screen, history := newTestViewWithLog(t)
	v.Redraw()

	for i := 1; i <= 10; i++ {
		history.Log(board.Notice{Kind: board.NoticeMoved, Text: fmt.Sprintf("note %02d", i)})
	}

	// 3x3 grid gets the minimum pane height
	if first := row(screen, gridY); !strings.Contains(first, "note 05") {
		t.Errorf("Expected oldest visible line note 05, got %q", first)
	}
	if last := row(screen, gridY+minLogRows-1); !strings.Contains(last, "note 10") {
		t.Errorf("Expected newest line note 10, got %q", last)
	}
	if n := len(v.Lines()); n != 10 {
		t.Errorf("Lines should expose the whole history, got %d", n)
	}

	// Full repaint draws the same tail
	v.Redraw()
	if last := row(screen, gridY+minLogRows-1); !strings.Contains(last, "note 10") {
		t.Errorf("Repaint lost the log tail: %q", last)
	}
	t.Logf("✓ Log pane follows history tail")
}

func TestView_NilHistory(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(40, 12)

	l, err := grid.LayoutFromRows("bare", []string{"..", ".."})
	if err != nil {
		t.Fatal(err)
	}
	v := NewView(screen, board.New(l, nil, nil), nil, "bare")
	v.Redraw()
	v.Log(board.Notice{Text: "ignored"})
	if len(v.Lines()) != 0 {
		t.Errorf("Expected empty log pane, got %v", v.Lines())
	}
}
