package maze

import (
	"fmt"
	"math/rand"
)

type generateOptions struct {
	openBoundary bool
}

// GenerateOption tunes Generate.
type GenerateOption func(*generateOptions)

// WithOpenBoundary opens the outer top wall of the first cell and the outer
// bottom wall of the last cell, turning the two corners into entrance and exit.
func WithOpenBoundary(open bool) GenerateOption {
	return func(o *generateOptions) {
		o.openBoundary = open
	}
}

// Generate builds a perfect maze using a randomized iterative depth-first backtracker.
// Starting from (0,0) it walks to a uniformly chosen unvisited neighbour, removing the
// wall pair in between, and backtracks when the current cell has no unvisited neighbour.
// The result depends only on rows, columns and the state of rng.
func Generate(rows, columns int, rng *rand.Rand, opts ...GenerateOption) (*Grid, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}

	grid, err := NewGrid(rows, columns)
	if err != nil {
		return nil, err
	}

	o := generateOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	carve(grid, rng)

	if o.openBoundary {
		grid.cells[0][0].Up = false
		grid.cells[rows-1][columns-1].Down = false
	}

	return grid, nil
}

// carve runs the backtracker over a fully walled grid.
func carve(grid *Grid, rng *rand.Rand) {
	stack := []Coordinate{{X: 0, Y: 0}}

	for len(stack) > 0 {
		current := stack[len(stack)-1]

		candidates := grid.unvisitedNeighbors(current)
		if len(candidates) == 0 {
			pop(&stack)
			continue
		}

		d := candidates[rng.Intn(len(candidates))]
		grid.openWall(current, d)
		stack = append(stack, current.Step(d))
	}
}

// pop removes and returns the last element of a stack of coordinates.
func pop(s *[]Coordinate) Coordinate {
	lastIndex := len(*s) - 1
	popped := (*s)[lastIndex]
	*s = (*s)[:lastIndex]
	return popped
}
