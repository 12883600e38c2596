// Command analyze prints quick, human-readable statistics about the maze
// presets in the project's configs directory. For every preset it carves a
// sample of mazes and reports average dead ends, corridors, junctions and the
// length of the path from start to goal. Seeded presets always produce the
// same maze and are sampled once.
//
// Usage:
//
//	go run ./cmd/analyze [configs-dir] [samples]
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/maze"
)

const defaultSamples = 20

// Summary holds averaged statistics for one preset
type Summary struct {
	File    string
	Name    string
	Cols    int
	Rows    int
	Seeded  bool
	Samples int

	DeadEnds  float64
	Corridors float64
	Junctions float64

	// Start-to-goal path lengths
	MinPath int
	MaxPath int
	AvgPath float64
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	samples := defaultSamples
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "invalid sample count %q\n", os.Args[2])
			os.Exit(2)
		}
		samples = n
	}

	if err := run(os.Stdout, dir, samples); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, dir string, samples int) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no presets found in %s", dir)
	}

	for _, file := range files {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(file))
		summary, err := analyzeConfig(file, samples)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		printSummary(w, summary)
	}
	return nil
}

// analyzeConfig loads a preset and carves samples mazes of its size
func analyzeConfig(path string, samples int) (Summary, error) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		File:   filepath.Base(path),
		Name:   config.Name,
		Cols:   config.Cols,
		Rows:   config.Rows,
		Seeded: config.Seed != nil,
	}
	if summary.Seeded {
		samples = 1
	}

	goal := maze.Position{X: config.Cols - 1, Y: config.Rows - 1}
	totalPath := 0
	for i := 0; i < samples; i++ {
		var rng maze.RandomSource
		if config.Seed != nil {
			rng = maze.NewSeededSource(*config.Seed)
		}

		grid, err := maze.Generate(config.Cols, config.Rows, rng)
		if err != nil {
			return Summary{}, err
		}

		stats := grid.ComputeStats()
		summary.DeadEnds += float64(stats.DeadEnds)
		summary.Corridors += float64(stats.Corridors)
		summary.Junctions += float64(stats.Junctions)

		path := grid.Distance(maze.Position{}, goal)
		if i == 0 || path < summary.MinPath {
			summary.MinPath = path
		}
		if path > summary.MaxPath {
			summary.MaxPath = path
		}
		totalPath += path
	}

	summary.Samples = samples
	n := float64(samples)
	summary.DeadEnds /= n
	summary.Corridors /= n
	summary.Junctions /= n
	summary.AvgPath = float64(totalPath) / n

	return summary, nil
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Name: %s\n", s.Name)
	fmt.Fprintf(w, "Size: %d x %d (%d cells)\n", s.Cols, s.Rows, s.Cols*s.Rows)
	if s.Seeded {
		fmt.Fprintln(w, "Layout: fixed seed")
	} else {
		fmt.Fprintf(w, "Layout: random, %d samples\n", s.Samples)
	}
	fmt.Fprintf(w, "Dead ends: %.1f\n", s.DeadEnds)
	fmt.Fprintf(w, "Corridors: %.1f\n", s.Corridors)
	fmt.Fprintf(w, "Junctions: %.1f\n", s.Junctions)
	if s.MinPath == s.MaxPath {
		fmt.Fprintf(w, "Path to goal: %d moves\n", s.MinPath)
	} else {
		fmt.Fprintf(w, "Path to goal: %.1f moves (min %d, max %d)\n", s.AvgPath, s.MinPath, s.MaxPath)
	}

	// Shortest possible route is the Manhattan distance
	if direct := s.Cols + s.Rows - 2; s.AvgPath > 0 {
		fmt.Fprintf(w, "Detour factor: %.2f\n", s.AvgPath/float64(direct))
	}
}
