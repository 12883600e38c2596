package maze

import (
	"fmt"
	"math/rand/v2"
)

// RandomSource picks a uniform index in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// NewSeededSource returns a reproducible random source for the given seed
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ClampSize limits a requested dimension to [MinSize, MaxSize]
func ClampSize(n int) int {
	return max(MinSize, min(n, MaxSize))
}

// ValidateDimensions checks that cols and rows are within the supported range
func ValidateDimensions(cols, rows int) error {
	if cols < MinSize || cols > MaxSize || rows < MinSize || rows > MaxSize {
		return fmt.Errorf("%w: %dx%d, both sides must be between %d and %d",
			ErrInvalidDimensions, cols, rows, MinSize, MaxSize)
	}
	return nil
}

// Generate carves a perfect maze using randomized depth-first backtracking.
// Dimensions outside [MinSize, MaxSize] are rejected, not clamped. A nil rng
// draws fresh randomness from the global source.
func Generate(cols, rows int, rng RandomSource) (*Grid, error) {
	if err := ValidateDimensions(cols, rows); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = globalSource{}
	}

	grid, err := NewGrid(cols, rows)
	if err != nil {
		return nil, err
	}

	visited := make([][]bool, rows)
	for y := range visited {
		visited[y] = make([]bool, cols)
	}

	stack := make([]Position, 0, cols*rows)
	stack = append(stack, Position{})
	visited[0][0] = true

	candidates := make([]Direction, 0, len(Directions))
	for len(stack) > 0 {
		current := stack[len(stack)-1]

		candidates = candidates[:0]
		for _, d := range Directions {
			next, ok := grid.Neighbor(current, d)
			if ok && !visited[next.Y][next.X] {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[rng.IntN(len(candidates))]
		if err := grid.OpenWall(current, d); err != nil {
			return nil, fmt.Errorf("carving %s from %s: %w", d, current, err)
		}
		next := current.Step(d)
		visited[next.Y][next.X] = true
		stack = append(stack, next)
	}

	return grid, nil
}
