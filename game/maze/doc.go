// Package maze provides the grid model and generator for perfect mazes.
//
// The maze package implements:
//   - A rectangular grid of cells with four independent walls each
//   - Paired wall opening so shared edges never become half-open
//   - Randomized depth-first backtracking generation with an explicit stack
//   - Perfectness checks (edge count, reachability, wall symmetry)
//   - ASCII rendering for text based clients
//
// Core Types:
//
// Grid holds the cells in row-major order (Cells[y][x]). Cell stores the wall
// flags for one grid unit, where true means the side is closed. Position is an
// (x, y) coordinate and Direction is one of the four cardinal moves.
//
// Usage:
//
//	grid, err := maze.Generate(15, 15, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Reproducible mazes for tests or shared seeds
//	grid, err = maze.Generate(15, 15, maze.NewSeededSource(42))
//
//	fmt.Println(grid.Render(maze.Position{}, maze.Position{X: 14, Y: 14}))
//
// Dimensions:
//
// Generate only accepts sizes in [MinSize, MaxSize] and fails with
// ErrInvalidDimensions otherwise. Callers that take user input should run the
// requested size through ClampSize first.
package maze
