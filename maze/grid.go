package maze

import (
	"fmt"
	"strings"
)

// Grid is a rows x columns matrix of cells.
type Grid struct {
	rows    int
	columns int
	cells   [][]Cell
}

// NewGrid creates a fully walled grid. Both dimensions must be at least one.
func NewGrid(rows, columns int) (*Grid, error) {
	if rows < 1 || columns < 1 {
		return nil, fmt.Errorf("%w: grid must have at least one row and column, got %dx%d", ErrInvalidConfig, rows, columns)
	}

	cells := make([][]Cell, rows)
	for y := range cells {
		cells[y] = make([]Cell, columns)
		for x := range cells[y] {
			cells[y][x] = NewCell()
		}
	}

	return &Grid{
		rows:    rows,
		columns: columns,
		cells:   cells,
	}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return g.rows
}

// Columns returns the number of columns.
func (g *Grid) Columns() int {
	return g.columns
}

// InBound reports whether c addresses a cell of the grid.
func (g *Grid) InBound(c Coordinate) bool {
	return c.Y >= 0 && c.Y < g.rows && c.X >= 0 && c.X < g.columns
}

// Cell returns a copy of the cell at c. c must be in bounds.
func (g *Grid) Cell(c Coordinate) Cell {
	return g.cells[c.Y][c.X]
}

// Cells returns a copy of the wall matrix, indexed [row][column].
func (g *Grid) Cells() [][]Cell {
	out := make([][]Cell, g.rows)
	for y := range g.cells {
		out[y] = append([]Cell(nil), g.cells[y]...)
	}
	return out
}

// HasWall reports whether the wall of cell c on side d is standing.
// Out of bounds coordinates are treated as solid.
func (g *Grid) HasWall(c Coordinate, d Direction) bool {
	if !g.InBound(c) {
		return true
	}
	return g.cells[c.Y][c.X].HasWall(d)
}

// OpenPassage removes the wall between c and its neighbour in direction d, on both sides.
func (g *Grid) OpenPassage(c Coordinate, d Direction) error {
	next := c.Step(d)
	if !g.InBound(c) || !g.InBound(next) {
		return fmt.Errorf("%w: %v -> %s leaves the grid", ErrInvalidPassage, c, d)
	}
	g.openWall(c, d)
	return nil
}

// OpenBoundary removes a boundary wall of c. The side must face the outside of the grid.
func (g *Grid) OpenBoundary(c Coordinate, d Direction) error {
	if !g.InBound(c) || g.InBound(c.Step(d)) {
		return fmt.Errorf("%w: %v %s is not a boundary wall", ErrInvalidPassage, c, d)
	}
	g.cells[c.Y][c.X].setWall(d, false)
	return nil
}

// openWall clears the mirrored wall pair between c and its neighbour in direction d.
func (g *Grid) openWall(c Coordinate, d Direction) {
	next := c.Step(d)
	g.cells[c.Y][c.X].setWall(d, false)
	g.cells[next.Y][next.X].setWall(d.Opposite(), false)
}

// unvisitedNeighbors returns the directions from c leading to in-bound cells that still have all walls.
func (g *Grid) unvisitedNeighbors(c Coordinate) []Direction {
	var result []Direction
	for _, d := range Directions {
		next := c.Step(d)
		if g.InBound(next) && g.cells[next.Y][next.X].Unvisited() {
			result = append(result, d)
		}
	}
	return result
}

// Neighbors returns the cells reachable from c through an open passage.
func (g *Grid) Neighbors(c Coordinate) []Coordinate {
	var result []Coordinate
	for _, d := range Directions {
		next := c.Step(d)
		if g.InBound(next) && !g.cells[c.Y][c.X].HasWall(d) && !g.cells[next.Y][next.X].HasWall(d.Opposite()) {
			result = append(result, next)
		}
	}
	return result
}

// Passages counts open internal passages. Boundary openings are not counted.
func (g *Grid) Passages() int {
	count := 0
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.columns; x++ {
			if x < g.columns-1 && !g.cells[y][x].Right {
				count++
			}
			if y < g.rows-1 && !g.cells[y][x].Down {
				count++
			}
		}
	}
	return count
}

// Equal reports whether both grids have the same shape and wall flags.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.rows != other.rows || g.columns != other.columns {
		return false
	}
	for y := range g.cells {
		for x := range g.cells[y] {
			if g.cells[y][x] != other.cells[y][x] {
				return false
			}
		}
	}
	return true
}

// String provides a textual representation of the grid.
func (g *Grid) String() string {
	var output strings.Builder

	// Top boundary
	output.WriteString("+")
	for x := 0; x < g.columns; x++ {
		if g.cells[0][x].Up {
			output.WriteString("---+")
		} else {
			output.WriteString("   +")
		}
	}
	output.WriteString("\n")

	for y := 0; y < g.rows; y++ {
		// Cell rows
		if g.cells[y][0].Left {
			output.WriteString("|")
		} else {
			output.WriteString(" ")
		}
		for x := 0; x < g.columns; x++ {
			if g.cells[y][x].Right {
				output.WriteString("   |")
			} else {
				output.WriteString("    ")
			}
		}
		output.WriteString("\n")

		// Wall rows
		output.WriteString("+")
		for x := 0; x < g.columns; x++ {
			if g.cells[y][x].Down {
				output.WriteString("---+")
			} else {
				output.WriteString("   +")
			}
		}
		output.WriteString("\n")
	}

	return output.String()
}
