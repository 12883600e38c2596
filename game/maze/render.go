package maze

import "strings"

// String provides a textual representation of the maze
func (g *Grid) String() string {
	return g.render(nil, nil)
}

// Render draws the maze with the agent marked '@' and the goal marked 'G'
func (g *Grid) Render(agent, goal Position) string {
	return g.render(&agent, &goal)
}

func (g *Grid) render(agent, goal *Position) string {
	var b strings.Builder

	// Top boundary
	b.WriteString("+")
	for x := 0; x < g.Cols; x++ {
		if g.Cells[0][x].Top {
			b.WriteString("---+")
		} else {
			b.WriteString("   +")
		}
	}
	b.WriteString("\n")

	for y := 0; y < g.Rows; y++ {
		// Cell row
		if g.Cells[y][0].Left {
			b.WriteString("|")
		} else {
			b.WriteString(" ")
		}
		for x := 0; x < g.Cols; x++ {
			p := Position{X: x, Y: y}
			switch {
			case agent != nil && p == *agent:
				b.WriteString(" @ ")
			case goal != nil && p == *goal:
				b.WriteString(" G ")
			default:
				b.WriteString("   ")
			}
			if g.Cells[y][x].Right {
				b.WriteString("|")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")

		// Wall row
		b.WriteString("+")
		for x := 0; x < g.Cols; x++ {
			if g.Cells[y][x].Bottom {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
