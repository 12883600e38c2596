package engine

import "github.com/wricardo/maze-game/game/maze"

// CountAccepted counts the accepted moves in a history segment
func CountAccepted(entries []MoveHistoryEntry) int {
	count := 0
	for _, entry := range entries {
		if entry.Success {
			count++
		}
	}
	return count
}

// DirectionNames converts directions to their lowercase names
func DirectionNames(dirs []maze.Direction) []string {
	names := make([]string, 0, len(dirs))
	for _, d := range dirs {
		names = append(names, d.String())
	}
	return names
}
