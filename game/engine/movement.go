package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/maze-game/game/maze"
)

// CanMoveTo checks if the edge from the player's cell in direction d is open
func (gs *GameState) CanMoveTo(d maze.Direction) bool {
	if gs.Grid == nil || !d.Valid() {
		return false
	}
	if _, ok := gs.Grid.Neighbor(gs.PlayerPos, d); !ok {
		return false
	}
	wall, err := gs.Grid.HasWall(gs.PlayerPos, d)
	return err == nil && !wall
}

// AttemptMove validates and applies a move. Boundary and wall denials are
// reported the same way; once the session is won every attempt is ignored.
func (gs *GameState) AttemptMove(d maze.Direction) MoveOutcome {
	outcome := MoveOutcome{
		Direction: d,
		From:      gs.PlayerPos,
		To:        gs.PlayerPos,
		Attempted: gs.PlayerPos.Step(d),
		Moves:     gs.Moves,
		Status:    gs.Status,
	}

	if gs.Status == StatusWon {
		outcome.Ignored = true
		return outcome
	}

	if !gs.CanMoveTo(d) {
		return outcome
	}

	gs.PlayerPos = outcome.Attempted
	gs.Moves++

	if gs.PlayerPos == gs.Goal {
		gs.Status = StatusWon
		outcome.Won = true
	}

	outcome.Accepted = true
	outcome.To = gs.PlayerPos
	outcome.Moves = gs.Moves
	outcome.Status = gs.Status
	return outcome
}

// MovePlayer parses the direction, attempts the move and updates the status message
func (gs *GameState) MovePlayer(direction string, config *GameConfig) (MoveOutcome, error) {
	d, err := maze.ParseDirection(direction)
	if err != nil {
		gs.Message = fmt.Sprintf("Unknown direction %q, use up, right, down or left", direction)
		return MoveOutcome{From: gs.PlayerPos, To: gs.PlayerPos, Attempted: gs.PlayerPos, Moves: gs.Moves, Status: gs.Status}, err
	}

	outcome := gs.AttemptMove(d)
	messages := configMessages(config)

	switch {
	case outcome.Ignored:
		gs.Message = messages.AlreadyWon
	case outcome.Won:
		gs.Message = formatCount(messages.Victory, gs.Moves)
	case outcome.Accepted:
		gs.Message = formatCount(messages.Moved, gs.Moves)
	default:
		gs.Message = messages.CantMove + fmt.Sprintf(" [Blocked: %s]", d)
	}

	return outcome, nil
}

// OpenDirections lists the directions with an open edge from the player's cell
func (gs *GameState) OpenDirections() []maze.Direction {
	var open []maze.Direction
	for _, d := range maze.Directions {
		if gs.CanMoveTo(d) {
			open = append(open, d)
		}
	}
	return open
}

// AddMoveToHistory adds a move attempt to the session's move history
func (gs *GameState) AddMoveToHistory(action string, fromPos, toPos maze.Position, success bool, at time.Time) {
	entry := MoveHistoryEntry{
		Action:       action,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Moves:        gs.Moves,
		Timestamp:    at.Unix(),
		Success:      success,
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}

// Snapshot returns a deep copy that stays valid while the session keeps moving
func (gs *GameState) Snapshot() *GameState {
	if gs == nil {
		return nil
	}
	cp := *gs
	if gs.Grid != nil {
		cp.Grid = gs.Grid.Clone()
	}
	if gs.Seed != nil {
		seed := *gs.Seed
		cp.Seed = &seed
	}
	if gs.FinishedAt != nil {
		at := *gs.FinishedAt
		cp.FinishedAt = &at
	}
	cp.MoveHistory = append([]MoveHistoryEntry(nil), gs.MoveHistory...)
	cp.CurrentMoves = append([]MoveHistoryEntry(nil), gs.CurrentMoves...)
	return &cp
}

// Elapsed returns the time spent in the current attempt
func (gs *GameState) Elapsed(now time.Time) time.Duration {
	if gs.FinishedAt != nil {
		return gs.FinishedAt.Sub(gs.StartedAt)
	}
	return now.Sub(gs.StartedAt)
}

func configMessages(config *GameConfig) Messages {
	defaults := DefaultConfig().Messages
	if config == nil {
		return defaults
	}
	m := config.Messages
	if m.Moved == "" {
		m.Moved = defaults.Moved
	}
	if m.CantMove == "" {
		m.CantMove = defaults.CantMove
	}
	if m.Victory == "" {
		m.Victory = defaults.Victory
	}
	if m.AlreadyWon == "" {
		m.AlreadyWon = defaults.AlreadyWon
	}
	return m
}

func formatCount(format string, n int) string {
	if strings.Contains(format, "%d") {
		return fmt.Sprintf(format, n)
	}
	return format
}
