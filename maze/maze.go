/*
Package maze provides tools for creating rectangular perfect mazes and turning them into wall geometry.

A Grid holds the wall flags of every cell and is produced by Generate, a randomized
depth-first backtracker driven by an injected random source. Extract and Consolidate
merge runs of collinear walls into the minimal set of rectangles a physics engine needs
as collision shapes. The Maze type places a grid in the world and converts between cell
coordinates and world points.
*/
package maze

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	ErrInvalidConfig  = errors.New("invalid maze configuration")
	ErrInvalidPassage = errors.New("invalid passage")
	ErrOutOfBounds    = errors.New("coordinate is out of the maze")
	ErrNoPath         = errors.New("no path between cells")
)

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Config describes the size and placement of a maze.
type Config struct {
	Rows         int     `yaml:"rows"`         // Number of cell rows
	Columns      int     `yaml:"columns"`      // Number of cell columns
	X            float64 `yaml:"x"`            // World x of the top-left corner
	Y            float64 `yaml:"y"`            // World y of the top-left corner
	Width        float64 `yaml:"width"`        // Overall width in world units
	Height       float64 `yaml:"height"`       // Overall height in world units
	Thickness    float64 `yaml:"thickness"`    // Wall thickness in world units
	OpenBoundary bool    `yaml:"openboundary"` // Open the outer wall of the start and end cells
}

// Validate rejects configurations the maze cannot be built from.
func (c Config) Validate() error {
	if c.Rows < 1 || c.Columns < 1 {
		return fmt.Errorf("%w: rows and columns must be positive, got %dx%d", ErrInvalidConfig, c.Rows, c.Columns)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: width and height must be positive, got %gx%g", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Thickness < 0 {
		return fmt.Errorf("%w: negative wall thickness %g", ErrInvalidConfig, c.Thickness)
	}
	return nil
}

// Maze is a generated grid placed in the world.
// Tile dimensions are always derived from the size and the grid shape.
type Maze struct {
	grid         *Grid
	x            float64
	y            float64
	width        float64
	height       float64
	thickness    float64
	openBoundary bool
}

// New validates cfg and generates a maze using rng.
func New(cfg Config, rng *rand.Rand) (*Maze, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	grid, err := Generate(cfg.Rows, cfg.Columns, rng, WithOpenBoundary(cfg.OpenBoundary))
	if err != nil {
		return nil, err
	}

	return FromGrid(grid, cfg)
}

// FromGrid places an existing grid in the world. Rows and Columns of cfg are ignored.
func FromGrid(grid *Grid, cfg Config) (*Maze, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidConfig)
	}
	cfg.Rows, cfg.Columns = grid.Rows(), grid.Columns()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Maze{
		grid:         grid,
		x:            cfg.X,
		y:            cfg.Y,
		width:        cfg.Width,
		height:       cfg.Height,
		thickness:    cfg.Thickness,
		openBoundary: cfg.OpenBoundary,
	}, nil
}

// Randomize replaces the grid with a freshly generated one of the same shape.
func (m *Maze) Randomize(rng *rand.Rand) error {
	grid, err := Generate(m.grid.Rows(), m.grid.Columns(), rng, WithOpenBoundary(m.openBoundary))
	if err != nil {
		return err
	}
	m.grid = grid
	return nil
}

func (m *Maze) Grid() *Grid { return m.grid }
func (m *Maze) Rows() int { return m.grid.Rows() }
func (m *Maze) Columns() int { return m.grid.Columns() }
func (m *Maze) Width() float64 { return m.width }
func (m *Maze) Height() float64 { return m.height }
func (m *Maze) Thickness() float64 { return m.thickness }
func (m *Maze) Origin() Point { return Point{X: m.x, Y: m.y} }
func (m *Maze) TileWidth() float64 { return m.width / float64(m.grid.Columns()) }
func (m *Maze) TileHeight() float64 { return m.height / float64(m.grid.Rows()) }
func (m *Maze) TileSize() float64 { return math.Min(m.TileWidth(), m.TileHeight()) }

// Rectangles returns the wall rectangles of the maze in world coordinates.
func (m *Maze) Rectangles() []Rectangle {
	// Validated at construction, Extract cannot fail here.
	rectangles, _ := Rectangles(m.grid, m.x, m.y, m.height, m.width, m.thickness)
	return rectangles
}

// Start returns the centre of the bottom-right cell.
func (m *Maze) Start() Point {
	return m.ToRealPoint(Coordinate{X: m.grid.Columns() - 1, Y: m.grid.Rows() - 1})
}

// End returns the centre of the top-left cell.
func (m *Maze) End() Point {
	return m.ToRealPoint(Coordinate{X: 0, Y: 0})
}

// StartCoordinate returns the cell holding Start.
func (m *Maze) StartCoordinate() Coordinate {
	return Coordinate{X: m.grid.Columns() - 1, Y: m.grid.Rows() - 1}
}

// EndCoordinate returns the cell holding End.
func (m *Maze) EndCoordinate() Coordinate {
	return Coordinate{X: 0, Y: 0}
}

// ToLocalCoordinate returns the cell containing the world point p.
// Points outside the maze map to out of bound coordinates.
func (m *Maze) ToLocalCoordinate(p Point) Coordinate {
	return Coordinate{
		X: int(math.Floor((p.X - m.x) / m.TileWidth())),
		Y: int(math.Floor((p.Y - m.y) / m.TileHeight())),
	}
}

// ToRealPoint returns the world position of the centre of cell c.
func (m *Maze) ToRealPoint(c Coordinate) Point {
	return Point{
		X: float64(c.X)*m.TileWidth() + m.TileWidth()/2 + m.x,
		Y: float64(c.Y)*m.TileHeight() + m.TileHeight()/2 + m.y,
	}
}

// Solve returns the unique path of cells from one cell to another, both included.
func (m *Maze) Solve(from, to Coordinate) ([]Coordinate, error) {
	return Solve(m.grid, from, to)
}

// SolveFrom returns the cell path from the cell containing p to the End cell,
// as world points at the cell centres.
func (m *Maze) SolveFrom(p Point) ([]Point, error) {
	path, err := m.Solve(m.ToLocalCoordinate(p), m.EndCoordinate())
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(path))
	for _, c := range path {
		points = append(points, m.ToRealPoint(c))
	}
	return points, nil
}

// String provides a textual representation of the maze.
func (m *Maze) String() string {
	return m.grid.String()
}

// Solve walks the open passages of grid from one cell to another.
// In a perfect maze the returned path is the only simple path.
func Solve(grid *Grid, from, to Coordinate) ([]Coordinate, error) {
	if !grid.InBound(from) || !grid.InBound(to) {
		return nil, fmt.Errorf("%w: %v -> %v", ErrOutOfBounds, from, to)
	}

	parents := map[Coordinate]Coordinate{from: from}
	stack := []Coordinate{from}

	for len(stack) > 0 {
		cell := pop(&stack)
		if cell == to {
			break
		}
		for _, next := range grid.Neighbors(cell) {
			if _, seen := parents[next]; !seen {
				parents[next] = cell
				stack = append(stack, next)
			}
		}
	}

	if _, reached := parents[to]; !reached {
		return nil, fmt.Errorf("%w: %v -> %v", ErrNoPath, from, to)
	}

	var path []Coordinate
	for cell := to; cell != from; cell = parents[cell] {
		path = append(path, cell)
	}
	path = append(path, from)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
