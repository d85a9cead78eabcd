package grid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fjord = `name: fjord
rows:
  - "..#.."
  - ".##.."
  - "....."
`

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout([]byte(fjord))
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}

	if l.Name() != "fjord" || l.Width() != 5 || l.Height() != 3 {
		t.Fatalf("Expected fjord 5x3, got %q %dx%d", l.Name(), l.Width(), l.Height())
	}

	cases := []struct {
		at   Coord
		want Class
	}{
		{Coord{0, 0}, Free},
		{Coord{0, 2}, Obstacle},
		{Coord{1, 1}, Obstacle},
		{Coord{1, 2}, Obstacle},
		{Coord{2, 4}, Free},
		{Coord{-1, 0}, Obstacle},
		{Coord{0, 5}, Obstacle},
	}
	for _, tc := range cases {
		if got := l.Classify(tc.at); got != tc.want {
			t.Errorf("Classify(%s) = %s, want %s", tc.at, got, tc.want)
		}
	}

	// Blocked uses x=col, y=row
	if !l.Blocked(2, 0) || l.Blocked(0, 2) {
		t.Error("Blocked axis order mismatch")
	}
}

func TestParseLayout_RejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"bad glyph", "rows:\n  - \"..x..\"\n"},
		{"no rows", "name: empty\n"},
		{"empty rows", "rows: []\n"},
		{"unknown field", "rows:\n  - \"...\"\nstart: [0, 0]\n"},
		{"ragged", "rows:\n  - \"...\"\n  - \"..\"\n"},
		{"not yaml", "rows: [\"...\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseLayout([]byte(tc.doc)); err == nil {
				t.Errorf("Expected %s document to be rejected", tc.name)
			}
		})
	}
}

func TestLoadLayout_NameFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tundra.yaml")
	if err := os.WriteFile(path, []byte("rows:\n  - \"..\"\n  - \"#.\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}
	if l.Name() != "tundra" {
		t.Errorf("Expected name from file base, got %q", l.Name())
	}

	if _, err := LoadLayout(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestMarshalLayout_RoundTripsRows(t *testing.T) {
	l, err := ParseLayout([]byte(fjord))
	if err != nil {
		t.Fatal(err)
	}
	out, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout failed: %v", err)
	}
	if !strings.Contains(string(out), ".##..") {
		t.Errorf("Expected rows in output, got:\n%s", out)
	}
	back, err := ParseLayout(out)
	if err != nil {
		t.Fatalf("Re-parse failed: %v", err)
	}
	if strings.Join(back.Rows(), "\n") != strings.Join(l.Rows(), "\n") {
		t.Error("Rows changed across marshal")
	}
}

func TestNewLayout_Errors(t *testing.T) {
	if _, err := NewLayout("x", nil); err == nil {
		t.Error("Expected error for empty grid")
	}
	if _, err := NewLayout("x", [][]bool{{false, false}, {false}}); err == nil {
		t.Error("Expected error for ragged grid")
	}
}

func TestLayoutFromRows(t *testing.T) {
	l, err := LayoutFromRows("wire", []string{".#", ".."})
	if err != nil {
		t.Fatal(err)
	}
	if l.Classify(Coord{Row: 0, Col: 1}) != Obstacle || l.Name() != "wire" {
		t.Error("Unexpected layout")
	}
	if _, err := LayoutFromRows("wire", []string{".x"}); err == nil {
		t.Error("Expected unknown glyph error")
	}
	if _, err := LayoutFromRows("wire", nil); err == nil {
		t.Error("Expected empty error")
	}
}

func TestCells(t *testing.T) {
	cells := NewCells(4, 3)

	if !cells.SetAgent(Coord{1, 2}, true) {
		t.Fatal("SetAgent in bounds returned false")
	}
	if !cells.SetTarget(Coord{2, 3}, true) {
		t.Fatal("SetTarget in bounds returned false")
	}
	if cells.SetAgent(Coord{3, 0}, true) || cells.SetTarget(Coord{0, -1}, true) {
		t.Error("Out-of-bounds writes must report false")
	}

	if got := cells.At(Coord{1, 2}); !got.HasAgent || got.IsTarget {
		t.Errorf("Unexpected cell at [1, 2]: %+v", got)
	}
	if got := cells.At(Coord{9, 9}); got != (Cell{}) {
		t.Errorf("Out-of-bounds read should be zero, got %+v", got)
	}

	agents := cells.Count(func(c Cell) bool { return c.HasAgent })
	targets := cells.Count(func(c Cell) bool { return c.IsTarget })
	if agents != 1 || targets != 1 {
		t.Errorf("Expected 1 agent, 1 target; got %d, %d", agents, targets)
	}

	cells.Clear()
	if n := cells.Count(func(c Cell) bool { return c.HasAgent || c.IsTarget }); n != 0 {
		t.Errorf("Expected clear arena, %d flagged cells remain", n)
	}
}

func TestCoordString(t *testing.T) {
	if s := (Coord{Row: 3, Col: 7}).String(); s != "[3, 7]" {
		t.Errorf("Unexpected format %q", s)
	}
}
