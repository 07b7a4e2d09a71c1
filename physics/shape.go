package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/bytearena/box2d"
)

var ErrInvalidShape = errors.New("invalid shape")

// Shape describes collision geometry in body space. The engine keeps its own
// copy, so a Shape can be reused across fixtures.
type Shape interface {
	b2() (box2d.B2ShapeInterface, error)
}

// Polygon is a convex polygon.
type Polygon struct {
	Vertices []Vec2
}

// NewPolygon checks that the vertices span a convex area the engine can hull.
func NewPolygon(vertices ...Vec2) (*Polygon, error) {
	p := &Polygon{Vertices: append([]Vec2(nil), vertices...)}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Box is an axis aligned rectangle of half extents hx, hy centred on center.
func Box(hx, hy float64, center Vec2) *Polygon {
	return &Polygon{Vertices: []Vec2{
		center.Add(V(-hx, -hy)),
		center.Add(V(hx, -hy)),
		center.Add(V(hx, hy)),
		center.Add(V(-hx, hy)),
	}}
}

func (p *Polygon) validate() error {
	n := len(p.Vertices)
	if n < 3 || n > box2d.B2_maxPolygonVertices {
		return fmt.Errorf("%w: %d vertices", ErrInvalidShape, n)
	}

	area := 0.0
	for i, v := range p.Vertices {
		area += v.Cross(p.Vertices[(i+1)%n])
	}
	if math.Abs(area)/2 <= box2d.B2_linearSlop*box2d.B2_linearSlop {
		return fmt.Errorf("%w: degenerate polygon", ErrInvalidShape)
	}
	return nil
}

func (p *Polygon) b2() (box2d.B2ShapeInterface, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	vs := make([]box2d.B2Vec2, len(p.Vertices))
	for i, v := range p.Vertices {
		vs[i] = v.b2()
	}
	shape := box2d.MakeB2PolygonShape()
	shape.Set(vs, len(vs))
	return &shape, nil
}

// Circle is a disc of Radius around Center.
type Circle struct {
	Center Vec2
	Radius float64
}

func (c *Circle) b2() (box2d.B2ShapeInterface, error) {
	if c.Radius <= 0 {
		return nil, fmt.Errorf("%w: radius %v", ErrInvalidShape, c.Radius)
	}
	shape := box2d.MakeB2CircleShape()
	shape.M_p = c.Center.b2()
	shape.M_radius = c.Radius
	return &shape, nil
}

// Edge is a line segment.
type Edge struct {
	V1 Vec2
	V2 Vec2
}

func (e *Edge) b2() (box2d.B2ShapeInterface, error) {
	if e.V1 == e.V2 {
		return nil, fmt.Errorf("%w: zero length edge", ErrInvalidShape)
	}
	shape := box2d.MakeB2EdgeShape()
	shape.Set(e.V1.b2(), e.V2.b2())
	return &shape, nil
}
