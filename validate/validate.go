// Command validate provides a small CLI that validates maze preset JSON
// files in the ../configs directory. It checks:
//   - JSON structure and unknown fields
//   - Required name and description
//   - Maze dimensions within the supported range
//   - Required message keys and their format verbs
//   - Generation: the preset carves a perfect maze whose goal is reachable
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/maze"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file. Unlike
// engine.ValidateGameConfig it reports every problem instead of the first.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}

	if err := maze.ValidateDimensions(config.Cols, config.Rows); err != nil {
		result.fail("Invalid size %dx%d: must be between %d and %d", config.Cols, config.Rows, maze.MinSize, maze.MaxSize)
	}

	validateMessages(&result, config.Messages)

	// Generation check only makes sense for an otherwise valid preset
	if result.Valid {
		generation := validateGeneration(&config)
		if !generation.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, generation.Errors...)
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Maze: %dx%d", config.Cols, config.Rows))
		if config.Seed != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Seed: %d", *config.Seed))
		} else {
			result.Errors = append(result.Errors, "✓ Seed: random")
		}
	}

	return result
}

func validateMessages(result *ValidationResult, m engine.Messages) {
	required := map[string]string{
		"welcome":   m.Welcome,
		"cant_move": m.CantMove,
		"victory":   m.Victory,
	}
	for _, key := range []string{"welcome", "cant_move", "victory"} {
		if required[key] == "" {
			result.fail("Missing required message: %s", key)
		}
	}

	if m.Victory != "" && strings.Count(m.Victory, "%d") != 1 {
		result.fail("messages.victory must contain exactly one %%d for the move count")
	}
	if m.Moved != "" && strings.Count(m.Moved, "%") > 1 {
		result.fail("messages.moved supports a single %%d verb")
	}
	if m.AlreadyWon == "" {
		result.Errors = append(result.Errors, "Note: messages.already_won not set, the default is used")
	}
}

// validateGeneration carves the preset's maze and verifies it is perfect and
// that the goal can be reached from the start. Unseeded presets are checked
// with a fixed sample seed.
func validateGeneration(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	seed := uint64(1)
	if config.Seed != nil {
		seed = *config.Seed
	}

	grid, err := maze.Generate(config.Cols, config.Rows, maze.NewSeededSource(seed))
	if err != nil {
		result.fail("Cannot generate maze: %v", err)
		return result
	}

	if err := grid.CheckPerfect(); err != nil {
		result.fail("Generated maze is not perfect: %v", err)
		return result
	}

	goal := maze.Position{X: config.Cols - 1, Y: config.Rows - 1}
	path := grid.Distance(maze.Position{}, goal)
	if path < 0 {
		result.fail("Goal %s unreachable from start", goal)
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Generation: perfect maze, goal %d moves away", path))
	return result
}

// main scans ../configs (or the directory given as the first argument) for
// *.json files and validates each one, printing a concise report and exiting
// with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") && !strings.HasPrefix(err, "Note:") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
