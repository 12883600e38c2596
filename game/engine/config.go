package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/maze-game/game/maze"
)

// ValidateGameConfig validates a maze preset for correctness
func ValidateGameConfig(config *GameConfig) error {
	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate maze size
	if config.Cols < maze.MinSize || config.Cols > maze.MaxSize {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", maze.MinSize, maze.MaxSize, config.Cols)
	}
	if config.Rows < maze.MinSize || config.Rows > maze.MaxSize {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", maze.MinSize, maze.MaxSize, config.Rows)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if config.Messages.CantMove == "" {
		return fmt.Errorf("config validation: messages.cant_move is required")
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for move count")
	}
	if config.Messages.Moved != "" && strings.Count(config.Messages.Moved, "%") > 1 {
		return fmt.Errorf("config validation: messages.moved supports a single %%d verb")
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns the built-in classic preset
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Classic 15x15 maze",
		Cols:        DefaultSize,
		Rows:        DefaultSize,
		Messages: Messages{
			Welcome:    "Find your way from the top-left corner to the goal in the bottom-right corner.",
			Moved:      "Moves: %d",
			CantMove:   "Can't move there!",
			Victory:    "You escaped the maze in %d moves!",
			AlreadyWon: "The maze is solved. Restart or regenerate to play again.",
		},
	}
}

// InitGameState creates a fresh session on the given maze. The agent starts
// at the top-left cell and the goal is the bottom-right cell.
func InitGameState(grid *maze.Grid, config *GameConfig, seed *uint64, now time.Time) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	start := maze.Position{X: 0, Y: 0}
	return &GameState{
		Grid:              grid,
		Start:             start,
		Goal:              maze.Position{X: grid.Cols - 1, Y: grid.Rows - 1},
		PlayerPos:         start,
		Status:            StatusPlaying,
		Message:           config.Messages.Welcome,
		ConfigName:        config.Name,
		Seed:              seed,
		StartedAt:         now,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
}
