package physics

import (
	"math"

	"github.com/bytearena/box2d"
)

// Vec2 is a 2D vector. It mirrors box2d.B2Vec2 with serialization tags.
type Vec2 struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return vec(box2d.B2Vec2Add(v.b2(), o.b2()))
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return vec(box2d.B2Vec2Sub(v.b2(), o.b2()))
}

func (v Vec2) Scale(factor float64) Vec2 {
	return vec(box2d.B2Vec2MulScalar(factor, v.b2()))
}

func (v Vec2) Dot(o Vec2) float64 {
	return box2d.B2Vec2Dot(v.b2(), o.b2())
}

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(o Vec2) float64 {
	return box2d.B2Vec2Cross(v.b2(), o.b2())
}

func (v Vec2) Length() float64 {
	return v.b2().Length()
}

func (v Vec2) Distance(o Vec2) float64 {
	return box2d.B2Vec2Distance(v.b2(), o.b2())
}

// Rotate turns v counter-clockwise by angle radians.
func (v Vec2) Rotate(angle float64) Vec2 {
	return vec(box2d.B2RotVec2Mul(box2d.MakeB2RotFromAngle(angle), v.b2()))
}

// Angle is the direction of v in radians.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

func (v Vec2) b2() box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v.X, v.Y)
}

func vec(v box2d.B2Vec2) Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}
