package maze

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	grid, err := NewGrid(6, 4)
	require.NoError(t, err)

	assert.Equal(t, 6, grid.Cols)
	assert.Equal(t, 4, grid.Rows)
	require.Len(t, grid.Cells, 4)
	for _, row := range grid.Cells {
		require.Len(t, row, 6)
		for _, cell := range row {
			assert.Equal(t, 4, cell.Walls())
		}
	}
	assert.Equal(t, 0, grid.OpenEdges())
	assert.NoError(t, grid.CheckSymmetry())
}

func TestNewGrid_InvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, -1}} {
		_, err := NewGrid(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	}
}

func TestGrid_OpenWallIsPaired(t *testing.T) {
	tests := []struct {
		name string
		from Position
		dir  Direction
		to   Position
	}{
		{"up", Position{X: 2, Y: 2}, Up, Position{X: 2, Y: 1}},
		{"right", Position{X: 2, Y: 2}, Right, Position{X: 3, Y: 2}},
		{"down", Position{X: 2, Y: 2}, Down, Position{X: 2, Y: 3}},
		{"left", Position{X: 2, Y: 2}, Left, Position{X: 1, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := NewGrid(5, 5)
			require.NoError(t, err)

			require.NoError(t, grid.OpenWall(tt.from, tt.dir))

			open, err := grid.HasWall(tt.from, tt.dir)
			require.NoError(t, err)
			assert.False(t, open)

			back, err := grid.HasWall(tt.to, tt.dir.Opposite())
			require.NoError(t, err)
			assert.False(t, back)

			assert.Equal(t, 1, grid.OpenEdges())
			assert.NoError(t, grid.CheckSymmetry())
		})
	}
}

func TestGrid_OpenWallRejectsBoundary(t *testing.T) {
	grid, err := NewGrid(5, 5)
	require.NoError(t, err)

	assert.ErrorIs(t, grid.OpenWall(Position{X: 0, Y: 0}, Up), ErrOutOfBounds)
	assert.ErrorIs(t, grid.OpenWall(Position{X: 0, Y: 0}, Left), ErrOutOfBounds)
	assert.ErrorIs(t, grid.OpenWall(Position{X: 4, Y: 4}, Right), ErrOutOfBounds)
	assert.ErrorIs(t, grid.OpenWall(Position{X: 4, Y: 4}, Down), ErrOutOfBounds)
	assert.ErrorIs(t, grid.OpenWall(Position{X: 9, Y: 9}, Up), ErrOutOfBounds)
	assert.ErrorIs(t, grid.OpenWall(Position{X: 1, Y: 1}, Direction(7)), ErrInvalidDirection)

	assert.Equal(t, 0, grid.OpenEdges())
	assert.NoError(t, grid.CheckSymmetry())
}

func TestGrid_CellOutOfBounds(t *testing.T) {
	grid, err := NewGrid(5, 5)
	require.NoError(t, err)

	for _, p := range []Position{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 5, Y: 0}, {X: 0, Y: 5}} {
		_, err := grid.Cell(p)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "expected out of bounds for %s", p)

		_, err = grid.HasWall(p, Up)
		assert.ErrorIs(t, err, ErrOutOfBounds)
	}
}

func TestGrid_CheckSymmetryDetectsHalfOpenWall(t *testing.T) {
	grid, err := NewGrid(5, 5)
	require.NoError(t, err)

	grid.Cells[1][1].Right = false
	assert.Error(t, grid.CheckSymmetry())

	grid.Cells[1][1].Right = true
	grid.Cells[0][0].Top = false
	assert.Error(t, grid.CheckSymmetry())
}

func TestGrid_Clone(t *testing.T) {
	grid, err := Generate(5, 5, NewSeededSource(3))
	require.NoError(t, err)

	clone := grid.Clone()
	assert.Equal(t, grid, clone)

	clone.Cells[0][0].Right = !clone.Cells[0][0].Right
	assert.NotEqual(t, grid.Cells[0][0], clone.Cells[0][0])
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
	}{
		{"up", Up}, {"UP", Up}, {" north ", Up}, {"w", Up},
		{"right", Right}, {"east", Right}, {"d", Right},
		{"down", Down}, {"south", Down}, {"s", Down},
		{"left", Left}, {"west", Left}, {"a", Left},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	for _, bad := range []string{"", "up-left", "northeast", "diagonal", "x"} {
		_, err := ParseDirection(bad)
		assert.ErrorIs(t, err, ErrInvalidDirection, bad)
	}
}

func TestDirection_DeltaAndOpposite(t *testing.T) {
	for _, d := range Directions {
		dx, dy := d.Delta()
		ox, oy := d.Opposite().Delta()
		assert.Equal(t, 1, dx*dx+dy*dy, "unit step for %s", d)
		assert.Equal(t, -dx, ox)
		assert.Equal(t, -dy, oy)
		assert.Equal(t, d, d.Opposite().Opposite())
	}
}

func TestDirection_TextRoundTrip(t *testing.T) {
	text, err := Down.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "down", string(text))

	var d Direction
	require.NoError(t, d.UnmarshalText([]byte("west")))
	assert.Equal(t, Left, d)

	_, err = Direction(9).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidDirection)
}
