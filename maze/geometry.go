package maze

import "fmt"

// epsilonFactor scales the tile unit into the minimum length of an emitted segment.
const epsilonFactor = 0.001

// Axis is the orientation of a wall segment.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// WallSegment is a run of consecutive walls along one grid line.
// For a horizontal segment Fixed is the y coordinate and Start/End run along x;
// for a vertical one Fixed is the x coordinate and Start/End run along y.
type WallSegment struct {
	Axis  Axis
	Fixed float64
	Start float64
	End   float64
}

// Length returns the extent of the segment along its axis.
func (s WallSegment) Length() float64 {
	return s.End - s.Start
}

// Rectangle is an axis aligned box in maze coordinates.
type Rectangle struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Contains reports whether (x, y) lies inside or on the border of r.
func (r Rectangle) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Center returns the centre point of r.
func (r Rectangle) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Extract merges the wall flags of grid into the minimal set of collinear segments.
// The grid spans height x width in local coordinates with its top-left corner at (0,0).
func Extract(grid *Grid, height, width float64) ([]WallSegment, error) {
	if grid == nil || grid.rows < 1 || grid.columns < 1 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidConfig)
	}
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: maze size must be positive, got %gx%g", ErrInvalidConfig, width, height)
	}

	tileHeight := height / float64(grid.rows)
	tileWidth := width / float64(grid.columns)

	var segments []WallSegment

	segments = append(segments, scanRow(grid, 0, Up, 0, tileWidth)...)
	for y := 0; y < grid.rows; y++ {
		segments = append(segments, scanRow(grid, y, Down, float64(y+1)*tileHeight, tileWidth)...)
	}

	segments = append(segments, scanColumn(grid, 0, Left, 0, tileHeight)...)
	for x := 0; x < grid.columns; x++ {
		segments = append(segments, scanColumn(grid, x, Right, float64(x+1)*tileWidth, tileHeight)...)
	}

	return segments, nil
}

// scanRow emits one horizontal segment per run of standing walls on side of row.
func scanRow(grid *Grid, row int, side Direction, offset, tile float64) []WallSegment {
	var segments []WallSegment
	runStart := 0
	for x := 0; x < grid.columns; x++ {
		if grid.cells[row][x].HasWall(side) {
			continue
		}
		segments = appendRun(segments, Horizontal, offset, runStart, x, tile)
		runStart = x + 1
	}
	return appendRun(segments, Horizontal, offset, runStart, grid.columns, tile)
}

// scanColumn emits one vertical segment per run of standing walls on side of column.
func scanColumn(grid *Grid, column int, side Direction, offset, tile float64) []WallSegment {
	var segments []WallSegment
	runStart := 0
	for y := 0; y < grid.rows; y++ {
		if grid.cells[y][column].HasWall(side) {
			continue
		}
		segments = appendRun(segments, Vertical, offset, runStart, y, tile)
		runStart = y + 1
	}
	return appendRun(segments, Vertical, offset, runStart, grid.rows, tile)
}

// appendRun appends the run covering tiles [from, to) unless it is shorter than the epsilon.
func appendRun(segments []WallSegment, axis Axis, fixed float64, from, to int, tile float64) []WallSegment {
	start := float64(from) * tile
	end := float64(to) * tile
	if end-start <= epsilonFactor*tile {
		return segments
	}
	return append(segments, WallSegment{Axis: axis, Fixed: fixed, Start: start, End: end})
}

// Consolidate converts segments into rectangles placed at the maze origin.
// Each rectangle is padded by thickness along its own axis and is thickness wide
// across it, so walls meeting at a corner overlap instead of leaving a gap.
func Consolidate(segments []WallSegment, originX, originY, thickness float64) []Rectangle {
	rectangles := make([]Rectangle, 0, len(segments))
	for _, s := range segments {
		switch s.Axis {
		case Horizontal:
			rectangles = append(rectangles, Rectangle{
				X:      originX + s.Start,
				Y:      originY + s.Fixed,
				Width:  s.Length() + thickness,
				Height: thickness,
			})
		case Vertical:
			rectangles = append(rectangles, Rectangle{
				X:      originX + s.Fixed,
				Y:      originY + s.Start,
				Width:  thickness,
				Height: s.Length() + thickness,
			})
		}
	}
	return rectangles
}

// Rectangles extracts and consolidates the walls of grid in one call.
func Rectangles(grid *Grid, originX, originY, height, width, thickness float64) ([]Rectangle, error) {
	segments, err := Extract(grid, height, width)
	if err != nil {
		return nil, err
	}
	return Consolidate(segments, originX, originY, thickness), nil
}
