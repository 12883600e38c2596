package main

import (
	"fmt"

	"github.com/wricardo/maze-game/game/engine"
	"github.com/wricardo/maze-game/game/maze"
)

// Strategy picks the next moves from the current state
type Strategy interface {
	// NextMoves returns one or more directions to send, or nil when stuck
	NextMoves(state *engine.GameState) []string
	Reset()
}

// NewStrategy returns the strategy registered under name
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "explore":
		return NewExploreStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q, use 'explore'", name)
	}
}

// ExploreStrategy walks the maze depth-first, looking only at the walls of
// cells it has stood on. It backtracks out of dead ends along its own trail,
// so every passage is walked at most twice.
type ExploreStrategy struct {
	visited map[maze.Position]bool
	trail   []maze.Direction
}

// NewExploreStrategy creates an explorer with no memory of the maze
func NewExploreStrategy() *ExploreStrategy {
	return &ExploreStrategy{visited: make(map[maze.Position]bool)}
}

// NextMoves steps into an unexplored neighbor when there is one. Otherwise it
// retraces the trail in one batch up to the nearest cell with unexplored openings.
func (s *ExploreStrategy) NextMoves(state *engine.GameState) []string {
	pos := state.PlayerPos
	s.visited[pos] = true

	if d, ok := s.unexplored(state.Grid, pos); ok {
		s.trail = append(s.trail, d)
		return []string{d.String()}
	}

	var moves []string
	for len(s.trail) > 0 && len(moves) < engine.MaxBulkMoves {
		back := s.trail[len(s.trail)-1].Opposite()
		s.trail = s.trail[:len(s.trail)-1]
		moves = append(moves, back.String())

		pos = pos.Step(back)
		if _, ok := s.unexplored(state.Grid, pos); ok {
			break
		}
	}
	return moves
}

// unexplored returns the first open direction from pos leading to a cell not yet visited
func (s *ExploreStrategy) unexplored(grid *maze.Grid, pos maze.Position) (maze.Direction, bool) {
	cell, err := grid.Cell(pos)
	if err != nil {
		return 0, false
	}
	for _, d := range maze.Directions {
		if cell.Wall(d) {
			continue
		}
		if next, ok := grid.Neighbor(pos, d); ok && !s.visited[next] {
			return d, true
		}
	}
	return 0, false
}

// Reset forgets everything explored so far
func (s *ExploreStrategy) Reset() {
	s.visited = make(map[maze.Position]bool)
	s.trail = nil
}
