package physics

import "github.com/bytearena/box2d"

// Filter is a category/mask collision filter.
type Filter struct {
	CategoryBits uint16 `json:"category" bson:"category"`
	MaskBits     uint16 `json:"mask" bson:"mask"`
}

// Accepts reports whether the two filters agree in both directions, the same
// test the engine's default contact filter runs.
func (f Filter) Accepts(other Filter) bool {
	return f.MaskBits&other.CategoryBits != 0 && other.MaskBits&f.CategoryBits != 0
}

// Filters used by the maze and the car.
var (
	WallFilter    = Filter{CategoryBits: 0x0001, MaskBits: 0x0003}
	ChassisFilter = Filter{CategoryBits: 0x0002, MaskBits: 0x0001}
	SensorFilter  = Filter{CategoryBits: 0x0002, MaskBits: 0x0001}
	MarkerFilter  = Filter{CategoryBits: 0x0004, MaskBits: 0x0000}
	GoalFilter    = Filter{CategoryBits: 0x0008, MaskBits: 0x0000}
)

// DefaultFilter matches everything, like a fixture created without filter data.
var DefaultFilter = Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF}

func (f Filter) b2() box2d.B2Filter {
	out := box2d.MakeB2Filter()
	out.CategoryBits = f.CategoryBits
	out.MaskBits = f.MaskBits
	return out
}

func filterOf(f box2d.B2Filter) Filter {
	return Filter{CategoryBits: f.CategoryBits, MaskBits: f.MaskBits}
}
