package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/gridscout/grid"
	"github.com/lixenwraith/gridscout/maze"
)

func main() {
	width := flag.Int("width", 0, "Maze width, prompts when zero")
	height := flag.Int("height", 0, "Maze height, prompts when zero")
	braid := flag.Float64("braid", -1, "Braiding factor 0.0-1.0, prompts when negative")
	seed := flag.Int64("seed", 0, "Random seed, 0 for time based")
	name := flag.String("name", "", "Map name written to the document")
	out := flag.String("out", "", "Write the maze as a YAML map document and exit")
	flag.Parse()

	// Non-interactive when every dimension is given
	if *width > 0 && *height > 0 && *braid >= 0 {
		res, ok := generate(maze.Config{Width: *width, Height: *height, Braiding: *braid, Seed: *seed, Name: *name})
		if !ok {
			os.Exit(1)
		}
		if *out != "" {
			if err := writeLayout(*out, res.Layout); err != nil {
				fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
				os.Exit(1)
			}
			fmt.Printf("Wrote %s\n", *out)
		}
		return
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("\n=== STOCHASTIC TOPOLOGICAL MAZE GENERATOR ===")

		cfg := maze.Config{
			Width:    getInt(reader, "Width [Odd prefered] (default 31): ", 31),
			Height:   getInt(reader, "Height [Odd prefered] (default 15): ", 15),
			Braiding: getFloat(reader, "Braiding Factor [0.0 - 1.0] (default 0.2): ", 0.2),
			Seed:     *seed,
			Name:     *name,
		}
		res, ok := generate(cfg)

		if ok {
			fmt.Print("Save as YAML map? [path or empty]: ")
			path, _ := reader.ReadString('\n')
			if path = strings.TrimSpace(path); path != "" {
				if err := writeLayout(path, res.Layout); err != nil {
					fmt.Printf("Save failed: %v\n", err)
				} else {
					fmt.Printf("Wrote %s\n", path)
				}
			}
		}

		fmt.Print("\nGenerate another? [Y/n]: ")
		cont, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(cont)) == "n" {
			break
		}
	}
}

func generate(cfg maze.Config) (maze.Result, bool) {
	fmt.Println("\nGenerating...")
	startT := time.Now()
	res, err := maze.Generate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generate failed: %v\n", err)
		return res, false
	}
	fmt.Printf("Done in %v (seed %d)\n", time.Since(startT), res.Seed)
	fmt.Printf("Grid Dimensions: %dx%d\n", res.Layout.Width(), res.Layout.Height())

	if res.SolutionPath != nil {
		fmt.Printf("Solution Path Length: %d steps\n", len(res.SolutionPath))
	} else {
		fmt.Println("Status: Unsolvable (Isolated Start/End)")
	}
	draw(res)
	return res, true
}

func writeLayout(path string, l *grid.Layout) error {
	raw, err := grid.MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

func draw(res maze.Result) {
	onPath := make(map[grid.Coord]bool, len(res.SolutionPath))
	for _, p := range res.SolutionPath {
		onPath[p] = true
	}

	var sb strings.Builder
	for r := 0; r < res.Layout.Height(); r++ {
		for c := 0; c < res.Layout.Width(); c++ {
			p := grid.Coord{Row: r, Col: c}
			switch {
			case p == res.Start:
				sb.WriteString("S")
			case p == res.End:
				sb.WriteString("E")
			case res.Layout.Classify(p) == grid.Obstacle:
				sb.WriteString("█")
			case onPath[p]:
				sb.WriteString("•")
			default:
				sb.WriteString(" ")
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Print(sb.String())
}

// --- Input Helpers ---

func getInt(r *bufio.Reader, prompt string, def int) int {
	fmt.Print(prompt)
	s, _ := r.ReadString('\n')
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func getFloat(r *bufio.Reader, prompt string, def float64) float64 {
	fmt.Print(prompt)
	s, _ := r.ReadString('\n')
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return min(max(v, 0.0), 1.0)
}
