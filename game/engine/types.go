package engine

import (
	"time"

	"github.com/wricardo/maze-game/game/maze"
)

// Status is the navigation state of a session
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"

	// Validation constants
	DefaultSize         = 15
	MaxBulkMoves        = 100
	WebSocketBufferSize = 256
)

// Messages holds the player facing texts of a configuration
type Messages struct {
	Welcome    string `json:"welcome"`
	Moved      string `json:"moved"`
	CantMove   string `json:"cant_move"`
	Victory    string `json:"victory"`
	AlreadyWon string `json:"already_won"`
}

// GameConfig represents a maze preset loaded from JSON
type GameConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Cols        int      `json:"cols"`
	Rows        int      `json:"rows"`
	Seed        *uint64  `json:"seed,omitempty"` // Fixed maze layout when set
	Messages    Messages `json:"messages"`
}

// GameState represents the complete session state
type GameState struct {
	Grid       *maze.Grid    `json:"grid"`
	Start      maze.Position `json:"start"`
	Goal       maze.Position `json:"goal"`
	PlayerPos  maze.Position `json:"player_pos"`
	Moves      int           `json:"moves"` // Accepted moves only
	Status     Status        `json:"status"`
	Message    string        `json:"message"`
	ConfigName string        `json:"config_name"`
	Seed       *uint64       `json:"seed,omitempty"`
	Attempt    int           `json:"attempt"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the attempts since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveOutcome reports the result of a single move attempt
type MoveOutcome struct {
	Direction maze.Direction `json:"direction"`
	Accepted  bool           `json:"accepted"`
	Ignored   bool           `json:"ignored,omitempty"` // Session already won
	Won       bool           `json:"won,omitempty"`     // This move reached the goal
	From      maze.Position  `json:"from"`
	To        maze.Position  `json:"to"`
	Attempted maze.Position  `json:"attempted"`
	Moves     int            `json:"moves"`
	Status    Status         `json:"status"`
}

// MoveHistoryEntry represents a single move attempt in the session history
type MoveHistoryEntry struct {
	Action       string        `json:"action"`
	FromPosition maze.Position `json:"from_position"`
	ToPosition   maze.Position `json:"to_position"`
	Moves        int           `json:"moves"`
	Timestamp    int64         `json:"timestamp"`
	Success      bool          `json:"success"`
	MoveNumber   int           `json:"move_number"`
}
