package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/maze-game/game/maze"
)

// ErrNilState is returned when a nil or incomplete state is assigned to an engine
var ErrNilState = errors.New("state cannot be nil")

// Engine provides the main interface for game operations
type Engine interface {
	// Session state management
	GetState() *GameState
	SetState(state *GameState) error
	Restart() *GameState
	Regenerate(cols, rows int, seed *uint64) (*GameState, error)
	IsWon() bool
	GetMoves() int
	GetPlayerPosition() maze.Position
	GetGoal() maze.Position
	Elapsed() time.Duration

	// Movement operations
	Move(direction string) bool
	Step(direction string) (MoveOutcome, error)
	AttemptMove(d maze.Direction) MoveOutcome
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	Render() string
}

// Option customizes a GameEngine
type Option func(*GameEngine)

// WithRandomSource sets the source used to carve mazes
func WithRandomSource(rng maze.RandomSource) Option {
	return func(e *GameEngine) { e.rng = rng }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *GameEngine) { e.now = now }
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    maze.RandomSource
	now    func() time.Time
}

func newGameEngine(config *GameConfig, opts []Option) *GameEngine {
	e := &GameEngine{config: config, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngine creates a new game engine and carves a maze sized by the configuration
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := newGameEngine(config, opts)
	grid, err := maze.Generate(config.Cols, config.Rows, e.source(config.Seed))
	if err != nil {
		return nil, err
	}
	e.state = InitGameState(grid, config, config.Seed, e.now())
	return e, nil
}

// NewEngineWithGrid creates an engine around an existing maze. A nil config
// falls back to the default messages sized to the grid.
func NewEngineWithGrid(grid *maze.Grid, config *GameConfig, opts ...Option) (*GameEngine, error) {
	if grid == nil {
		return nil, fmt.Errorf("grid cannot be nil")
	}
	if err := checkGrid(grid); err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultConfig()
		config.Cols, config.Rows = grid.Cols, grid.Rows
	}

	e := newGameEngine(config, opts)
	e.state = InitGameState(grid, config, nil, e.now())
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with default configuration
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		// The default config is always valid
		panic(err)
	}
	return e
}

// source picks the random source for the next carve: an explicit option
// first, then a fixed seed, then the global generator.
func (e *GameEngine) source(seed *uint64) maze.RandomSource {
	if e.rng != nil {
		return e.rng
	}
	if seed != nil {
		return maze.NewSeededSource(*seed)
	}
	return nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return ErrNilState
	}
	if state.Grid == nil {
		return fmt.Errorf("%w: missing grid", ErrNilState)
	}
	if err := checkGrid(state.Grid); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	for _, p := range []maze.Position{state.Start, state.Goal, state.PlayerPos} {
		if !state.Grid.InBounds(p) {
			return fmt.Errorf("restore state: %w: %s outside %dx%d", maze.ErrOutOfBounds, p, state.Grid.Cols, state.Grid.Rows)
		}
	}
	e.state = state
	return nil
}

// checkGrid rejects restored grids the generator could not have produced
func checkGrid(grid *maze.Grid) error {
	if err := maze.ValidateDimensions(grid.Cols, grid.Rows); err != nil {
		return err
	}
	return grid.CheckSymmetry()
}

// Restart puts the player back on the start cell of the same maze
func (e *GameEngine) Restart() *GameState {
	// Preserve cumulative history and totals across restarts
	prev := e.state

	e.state = InitGameState(prev.Grid, e.config, prev.Seed, e.now())
	e.state.Attempt = prev.Attempt + 1
	e.state.MoveHistory = prev.MoveHistory
	e.state.TotalMoves = prev.TotalMoves

	return e.state
}

// Regenerate carves a new maze and replaces the session state. Zero
// dimensions keep the current size.
func (e *GameEngine) Regenerate(cols, rows int, seed *uint64) (*GameState, error) {
	if cols == 0 {
		cols = e.state.Grid.Cols
	}
	if rows == 0 {
		rows = e.state.Grid.Rows
	}

	grid, err := maze.Generate(cols, rows, e.source(seed))
	if err != nil {
		return nil, err
	}

	// Configs are shared through the manager cache
	cfg := *e.config
	cfg.Cols, cfg.Rows = cols, rows
	cfg.Seed = seed
	e.config = &cfg

	e.state = InitGameState(grid, e.config, seed, e.now())
	return e.state, nil
}

// IsWon returns whether the player reached the goal
func (e *GameEngine) IsWon() bool {
	return e.state.Status == StatusWon
}

// GetMoves returns the number of accepted moves in the current attempt
func (e *GameEngine) GetMoves() int {
	return e.state.Moves
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() maze.Position {
	return e.state.PlayerPos
}

// GetGoal returns the goal position
func (e *GameEngine) GetGoal() maze.Position {
	return e.state.Goal
}

// Elapsed returns the duration of the current attempt
func (e *GameEngine) Elapsed() time.Duration {
	return e.state.Elapsed(e.now())
}

// Move attempts to move the player in the specified direction
func (e *GameEngine) Move(direction string) bool {
	outcome, err := e.Step(direction)
	return err == nil && outcome.Accepted
}

// Step parses and applies a move, recording it in the history. Moves on a
// won session are ignored and not recorded.
func (e *GameEngine) Step(direction string) (MoveOutcome, error) {
	if e.state.Status == StatusWon {
		d, _ := maze.ParseDirection(direction)
		e.state.Message = configMessages(e.config).AlreadyWon
		return e.state.AttemptMove(d), nil
	}

	prevPos := e.state.PlayerPos
	outcome, err := e.state.MovePlayer(direction, e.config)
	e.record(direction, prevPos, outcome)

	return outcome, err
}

// AttemptMove applies a parsed direction and records it in the history
func (e *GameEngine) AttemptMove(d maze.Direction) MoveOutcome {
	if e.state.Status == StatusWon {
		return e.state.AttemptMove(d)
	}

	prevPos := e.state.PlayerPos
	outcome := e.state.AttemptMove(d)
	e.record(d.String(), prevPos, outcome)
	return outcome
}

func (e *GameEngine) record(action string, from maze.Position, outcome MoveOutcome) {
	now := e.now()
	if outcome.Won && e.state.FinishedAt == nil {
		e.state.FinishedAt = &now
	}
	e.state.AddMoveToHistory(action, from, e.state.PlayerPos, outcome.Accepted, now)
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	if e.state.Status == StatusWon {
		return false
	}
	d, err := maze.ParseDirection(direction)
	if err != nil {
		return false
	}
	return e.state.CanMoveTo(d)
}

// GetPossibleMoves returns all directions with an open passage
func (e *GameEngine) GetPossibleMoves() []string {
	if e.state.Status == StatusWon {
		return nil
	}
	var possible []string
	for _, d := range e.state.OpenDirections() {
		possible = append(possible, d.String())
	}
	return possible
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and carves a new maze
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	grid, err := maze.Generate(config.Cols, config.Rows, e.source(config.Seed))
	if err != nil {
		return err
	}

	e.config = config
	e.state = InitGameState(grid, config, config.Seed, e.now())
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// Render draws the maze with the player and goal marked
func (e *GameEngine) Render() string {
	return e.state.Grid.Render(e.state.PlayerPos, e.state.Goal)
}

// BulkMove executes multiple moves in sequence, returning success status for each
func (e *GameEngine) BulkMove(moves []string) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop once the goal is reached
		if e.IsWon() {
			break
		}

		results = append(results, e.Move(direction))
	}

	return results
}
