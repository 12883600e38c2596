package maze

import "fmt"

// Reachable returns how many cells can be reached from start through open edges
func (g *Grid) Reachable(start Position) int {
	count := 0
	for _, row := range g.distances(start) {
		for _, d := range row {
			if d >= 0 {
				count++
			}
		}
	}
	return count
}

// Distance returns the number of moves on the shortest open path between two
// cells, or -1 when to cannot be reached. In a perfect maze the path is unique.
func (g *Grid) Distance(from, to Position) int {
	if !g.InBounds(to) {
		return -1
	}
	dist := g.distances(from)
	if dist == nil {
		return -1
	}
	return dist[to.Y][to.X]
}

// distances runs a breadth-first search from start; unreached cells hold -1
func (g *Grid) distances(start Position) [][]int {
	if !g.InBounds(start) {
		return nil
	}

	dist := make([][]int, g.Rows)
	for y := range dist {
		dist[y] = make([]int, g.Cols)
		for x := range dist[y] {
			dist[y][x] = -1
		}
	}

	queue := []Position{start}
	dist[start.Y][start.X] = 0

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for _, d := range Directions {
			if g.Cells[p.Y][p.X].Wall(d) {
				continue
			}
			next, ok := g.Neighbor(p, d)
			if !ok || dist[next.Y][next.X] >= 0 {
				continue
			}
			dist[next.Y][next.X] = dist[p.Y][p.X] + 1
			queue = append(queue, next)
		}
	}

	return dist
}

// CheckPerfect verifies that the open edges form a spanning tree: walls are
// symmetric, every cell is reachable from (0,0) and there are exactly
// cols*rows-1 open edges
func (g *Grid) CheckPerfect() error {
	if err := g.CheckSymmetry(); err != nil {
		return err
	}

	cells := g.Cols * g.Rows
	if edges := g.OpenEdges(); edges != cells-1 {
		return fmt.Errorf("expected %d open edges, got %d", cells-1, edges)
	}
	if reached := g.Reachable(Position{}); reached != cells {
		return fmt.Errorf("only %d of %d cells reachable from (0,0)", reached, cells)
	}
	return nil
}

// Stats summarizes the shape of a maze
type Stats struct {
	Cols      int `json:"cols"`
	Rows      int `json:"rows"`
	Cells     int `json:"cells"`
	OpenEdges int `json:"open_edges"`
	DeadEnds  int `json:"dead_ends"`
	Junctions int `json:"junctions"`
	Corridors int `json:"corridors"`
}

// ComputeStats counts dead ends (one opening), corridors (two) and junctions (three or more)
func (g *Grid) ComputeStats() Stats {
	stats := Stats{
		Cols:      g.Cols,
		Rows:      g.Rows,
		Cells:     g.Cols * g.Rows,
		OpenEdges: g.OpenEdges(),
	}

	for _, row := range g.Cells {
		for _, cell := range row {
			switch 4 - cell.Walls() {
			case 0:
			case 1:
				stats.DeadEnds++
			case 2:
				stats.Corridors++
			default:
				stats.Junctions++
			}
		}
	}
	return stats
}
