package maze

// Cell represents a single tile in a maze grid.
// A flag is true while the wall on that side is standing.
type Cell struct {
	Up    bool `json:"up" bson:"up"`       // Up indicates whether there is a wall on the top side of the cell.
	Down  bool `json:"down" bson:"down"`   // Down indicates whether there is a wall on the bottom side of the cell.
	Left  bool `json:"left" bson:"left"`   // Left indicates whether there is a wall on the left side of the cell.
	Right bool `json:"right" bson:"right"` // Right indicates whether there is a wall on the right side of the cell.
}

// NewCell returns a fully walled cell.
func NewCell() Cell {
	return Cell{Up: true, Down: true, Left: true, Right: true}
}

// Unvisited reports whether all four walls are still intact.
// During generation this is the only visited marker a cell carries.
func (c Cell) Unvisited() bool {
	return c.Up && c.Down && c.Left && c.Right
}

// HasWall returns the wall flag on the given side.
func (c Cell) HasWall(d Direction) bool {
	switch d {
	case Up:
		return c.Up
	case Down:
		return c.Down
	case Left:
		return c.Left
	case Right:
		return c.Right
	default:
		return false
	}
}

func (c *Cell) setWall(d Direction, wall bool) {
	switch d {
	case Up:
		c.Up = wall
	case Down:
		c.Down = wall
	case Left:
		c.Left = wall
	case Right:
		c.Right = wall
	}
}

// Coordinate addresses a cell in the grid. X is the column, Y is the row.
type Coordinate struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// Step returns the coordinate one cell away in direction d.
func (c Coordinate) Step(d Direction) Coordinate {
	delta := d.delta()
	return Coordinate{X: c.X + delta.X, Y: c.Y + delta.Y}
}

// Direction is one of the four orthogonal neighbours of a cell.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists the orthogonal directions in the fixed order the generator scans them.
var Directions = [...]Direction{Up, Down, Left, Right}

func (d Direction) delta() Coordinate {
	switch d {
	case Up:
		return Coordinate{X: 0, Y: -1}
	case Down:
		return Coordinate{X: 0, Y: 1}
	case Left:
		return Coordinate{X: -1, Y: 0}
	case Right:
		return Coordinate{X: 1, Y: 0}
	default:
		return Coordinate{}
	}
}

// Opposite returns the direction pointing back.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}
