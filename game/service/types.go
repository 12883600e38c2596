package service

import (
	"time"

	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/maze"
	"github.com/wricardo/maze-game/game/records"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CreateSessionRequest selects the preset and optional overrides of a new session.
// Explicit dimensions are clamped to the supported range.
type CreateSessionRequest struct {
	ConfigName string  `json:"config_id,omitempty"`
	Cols       int     `json:"cols,omitempty"`
	Rows       int     `json:"rows,omitempty"`
	Seed       *uint64 `json:"seed,omitempty"`
}

// RegenerateRequest describes the next maze of a session. Zero dimensions keep the current size.
type RegenerateRequest struct {
	Cols int     `json:"cols,omitempty"`
	Rows int     `json:"rows,omitempty"`
	Seed *uint64 `json:"seed,omitempty"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success       bool               `json:"success"`
	GameState     *engine.GameState  `json:"game_state"`
	Message       string             `json:"message"`
	Events        []GameEvent        `json:"events,omitempty"`
	Outcome       engine.MoveOutcome `json:"outcome"`
	PossibleMoves []string           `json:"possible_moves"`
	Record        *RecordResult      `json:"record,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked|invalid_direction|won|already_won
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartPos maze.Position `json:"start_pos"`
	EndPos   maze.Position `json:"end_pos"`
	Steps    []StepInfo    `json:"steps,omitempty"`

	Won           bool          `json:"won"`
	Message       string        `json:"message,omitempty"`
	PossibleMoves []string      `json:"possible_moves,omitempty"`
	Record        *RecordResult `json:"record,omitempty"`
}

// StepInfo is a compact record for each attempted move in the bulk call
type StepInfo struct {
	Idx     int           `json:"idx"`
	Dir     string        `json:"dir"`
	From    maze.Position `json:"from"`
	To      maze.Position `json:"to"`
	Success bool          `json:"success"`
	Won     bool          `json:"won,omitempty"`
}

// RecordResult reports the record submitted for a finished attempt
type RecordResult struct {
	Record  records.Record `json:"record"`
	NewBest bool           `json:"new_best"`
}

// Event types
const (
	EventMove        = "move"
	EventBlocked     = "blocked"
	EventVictory     = "victory"
	EventReset       = "reset"
	EventRegenerated = "regenerated"
	EventRecord      = "record"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Position  maze.Position `json:"position"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Accepted    int                       `json:"accepted"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a maze preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Cols        int    `json:"cols"`
	Rows        int    `json:"rows"`
	Seeded      bool   `json:"seeded"`
}
