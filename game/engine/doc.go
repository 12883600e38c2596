// Package engine provides the navigation state machine for the maze game.
//
// A session wraps a perfect maze produced by the maze package. The agent
// starts at the top-left cell and the goal is the bottom-right cell. Each
// move is validated against the walls of the current cell:
//
//   - a move leaving the grid or crossing a closed wall is denied and
//     changes nothing
//   - an accepted move relocates the agent and increments the move count
//   - landing on the goal switches the session to StatusWon, after which
//     every further move is ignored
//
// Boundary and wall denials are reported identically.
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState holds the maze and the session
// counters, while GameConfig is a preset loaded from JSON.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Move("right")
//	fmt.Print(gameEngine.Render())
//
// Restart keeps the maze and resets the session counters. Regenerate carves
// a new maze, optionally with new dimensions or a fixed seed.
package engine
