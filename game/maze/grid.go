package maze

import (
	"errors"
	"fmt"
)

const (
	// Supported maze dimensions, inclusive
	MinSize = 5
	MaxSize = 51
)

var (
	ErrInvalidDimensions = errors.New("invalid maze dimensions")
	ErrOutOfBounds       = errors.New("position out of bounds")
)

// Cell represents a single grid cell. A true flag means the wall is closed.
type Cell struct {
	Top    bool `json:"top"`
	Right  bool `json:"right"`
	Bottom bool `json:"bottom"`
	Left   bool `json:"left"`
}

// Wall reports whether the side facing d is closed
func (c Cell) Wall(d Direction) bool {
	switch d {
	case Up:
		return c.Top
	case Right:
		return c.Right
	case Down:
		return c.Bottom
	case Left:
		return c.Left
	}
	return true
}

// Walls returns how many sides of the cell are closed
func (c Cell) Walls() int {
	n := 0
	for _, d := range Directions {
		if c.Wall(d) {
			n++
		}
	}
	return n
}

func (c *Cell) setWall(d Direction, closed bool) {
	switch d {
	case Up:
		c.Top = closed
	case Right:
		c.Right = closed
	case Down:
		c.Bottom = closed
	case Left:
		c.Left = closed
	}
}

// Grid is a rows x cols collection of cells stored as Cells[y][x]
type Grid struct {
	Cols  int      `json:"cols"`
	Rows  int      `json:"rows"`
	Cells [][]Cell `json:"cells"`
}

// NewGrid creates a grid with every wall closed
func NewGrid(cols, rows int) (*Grid, error) {
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cols, rows)
	}

	cells := make([][]Cell, rows)
	for y := range cells {
		cells[y] = make([]Cell, cols)
		for x := range cells[y] {
			cells[y][x] = Cell{Top: true, Right: true, Bottom: true, Left: true}
		}
	}

	return &Grid{Cols: cols, Rows: rows, Cells: cells}, nil
}

// InBounds reports whether p lies inside the grid
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.Cols && p.Y >= 0 && p.Y < g.Rows
}

// Cell returns the cell at p
func (g *Grid) Cell(p Position) (Cell, error) {
	if !g.InBounds(p) {
		return Cell{}, fmt.Errorf("%w: %s in %dx%d grid", ErrOutOfBounds, p, g.Cols, g.Rows)
	}
	return g.Cells[p.Y][p.X], nil
}

// HasWall reports whether the wall of cell p facing d is closed
func (g *Grid) HasWall(p Position, d Direction) (bool, error) {
	cell, err := g.Cell(p)
	if err != nil {
		return false, err
	}
	return cell.Wall(d), nil
}

// Neighbor returns the adjacent position in direction d, if it is inside the grid
func (g *Grid) Neighbor(p Position, d Direction) (Position, bool) {
	next := p.Step(d)
	return next, g.InBounds(p) && g.InBounds(next)
}

// OpenWall removes the wall between p and its neighbor in direction d.
// Both sides of the shared edge are opened together; boundary walls cannot be opened.
func (g *Grid) OpenWall(p Position, d Direction) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	if !g.InBounds(p) {
		return fmt.Errorf("%w: %s in %dx%d grid", ErrOutOfBounds, p, g.Cols, g.Rows)
	}
	next, ok := g.Neighbor(p, d)
	if !ok {
		return fmt.Errorf("%w: no neighbor %s of %s", ErrOutOfBounds, d, p)
	}

	g.Cells[p.Y][p.X].setWall(d, false)
	g.Cells[next.Y][next.X].setWall(d.Opposite(), false)
	return nil
}

// OpenEdges counts the open edges between adjacent cells
func (g *Grid) OpenEdges() int {
	count := 0
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			cell := g.Cells[y][x]
			// Count each shared edge once, from its left or top cell
			if x+1 < g.Cols && !cell.Right {
				count++
			}
			if y+1 < g.Rows && !cell.Bottom {
				count++
			}
		}
	}
	return count
}

// CheckSymmetry verifies that every shared edge agrees on both sides and that
// the outer boundary is closed
func (g *Grid) CheckSymmetry() error {
	if len(g.Cells) != g.Rows {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidDimensions, g.Rows, len(g.Cells))
	}
	for y := 0; y < g.Rows; y++ {
		if len(g.Cells[y]) != g.Cols {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidDimensions, y, len(g.Cells[y]), g.Cols)
		}
	}

	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			p := Position{X: x, Y: y}
			cell := g.Cells[y][x]
			for _, d := range Directions {
				next, ok := g.Neighbor(p, d)
				if !ok {
					if !cell.Wall(d) {
						return fmt.Errorf("boundary wall %s of %s is open", d, p)
					}
					continue
				}
				if cell.Wall(d) != g.Cells[next.Y][next.X].Wall(d.Opposite()) {
					return fmt.Errorf("asymmetric wall between %s and %s", p, next)
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	cells := make([][]Cell, len(g.Cells))
	for y := range g.Cells {
		cells[y] = make([]Cell, len(g.Cells[y]))
		copy(cells[y], g.Cells[y])
	}
	return &Grid{Cols: g.Cols, Rows: g.Rows, Cells: cells}
}
