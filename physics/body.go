package physics

import (
	"errors"
	"fmt"

	"github.com/bytearena/box2d"
	"github.com/google/uuid"
)

var (
	ErrInvalidBody = errors.New("invalid body")
	ErrWorldLocked = errors.New("world is locked")
)

// BodyType selects how a body takes part in the simulation.
type BodyType int

const (
	StaticBody BodyType = iota
	DynamicBody
)

func (t BodyType) String() string {
	if t == DynamicBody {
		return "dynamic"
	}
	return "static"
}

func (t BodyType) b2() uint8 {
	if t == DynamicBody {
		return box2d.B2BodyType.B2_dynamicBody
	}
	return box2d.B2BodyType.B2_staticBody
}

// BodyDef describes a body before it is created in a world.
type BodyDef struct {
	Type           BodyType
	Position       Vec2
	Angle          float64
	LinearDamping  float64
	AngularDamping float64
	UserData       UserData
}

// Body is a rigid body. Its origin is the position reported by Position.
type Body struct {
	id       uuid.UUID
	world    *World
	b2       *box2d.B2Body
	bodyType BodyType
	userData UserData
	fixtures []*Fixture
}

func (b *Body) ID() uuid.UUID { return b.id }
func (b *Body) Type() BodyType { return b.bodyType }
func (b *Body) UserData() UserData { return b.userData }
func (b *Body) Position() Vec2 { return vec(b.b2.GetPosition()) }
func (b *Body) Angle() float64 { return b.b2.GetAngle() }
func (b *Body) LinearVelocity() Vec2 { return vec(b.b2.GetLinearVelocity()) }
func (b *Body) AngularVelocity() float64 { return b.b2.GetAngularVelocity() }
func (b *Body) Mass() float64 { return b.b2.GetMass() }
func (b *Body) LocalCenter() Vec2 { return vec(b.b2.GetLocalCenter()) }
func (b *Body) WorldCenter() Vec2 { return vec(b.b2.GetWorldCenter()) }
func (b *Body) AngularDamping() float64 { return b.b2.GetAngularDamping() }
func (b *Body) Awake() bool { return b.b2.IsAwake() }

// Inertia is the rotational inertia about the body origin.
func (b *Body) Inertia() float64 { return b.b2.GetInertia() }

// Fixtures returns the attached fixtures in creation order.
func (b *Body) Fixtures() []*Fixture {
	return append([]*Fixture(nil), b.fixtures...)
}

// GetWorldPoint maps a body space point to world space.
func (b *Body) GetWorldPoint(local Vec2) Vec2 {
	return vec(b.b2.GetWorldPoint(local.b2()))
}

// GetWorldVector rotates a body space vector into world space.
func (b *Body) GetWorldVector(local Vec2) Vec2 {
	return vec(b.b2.GetWorldVector(local.b2()))
}

// GetLocalPoint maps a world point to body space.
func (b *Body) GetLocalPoint(world Vec2) Vec2 {
	return vec(b.b2.GetLocalPoint(world.b2()))
}

// CreateFixture attaches a shape. Mass data is recomputed when the fixture
// has density.
func (b *Body) CreateFixture(def FixtureDef) (*Fixture, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if b.world.Locked() {
		return nil, ErrWorldLocked
	}
	if def.Shape == nil {
		return nil, fmt.Errorf("create fixture: %w", ErrInvalidShape)
	}
	shape, err := def.Shape.b2()
	if err != nil {
		return nil, fmt.Errorf("create fixture: %w", err)
	}

	filter := def.Filter
	if filter == (Filter{}) {
		filter = DefaultFilter
	}

	f := &Fixture{body: b, userData: def.UserData}
	fd := box2d.MakeB2FixtureDef()
	fd.Shape = shape
	fd.Density = def.Density
	fd.Friction = def.Friction
	fd.Restitution = def.Restitution
	fd.IsSensor = def.IsSensor
	fd.Filter = filter.b2()
	fd.UserData = f

	f.b2 = b.b2.CreateFixtureFromDef(&fd)
	b.fixtures = append(b.fixtures, f)
	return f, nil
}

// ApplyTorque adds a torque for the next step.
func (b *Body) ApplyTorque(torque float64, wake bool) error {
	if err := b.check(); err != nil {
		return err
	}
	b.b2.ApplyTorque(torque, wake)
	return nil
}

// ApplyForce adds a force at a world point for the next step.
func (b *Body) ApplyForce(force, point Vec2, wake bool) error {
	if err := b.check(); err != nil {
		return err
	}
	b.b2.ApplyForce(force.b2(), point.b2(), wake)
	return nil
}

// SetTransform moves the body origin to position with angle radians.
func (b *Body) SetTransform(position Vec2, angle float64) error {
	if err := b.check(); err != nil {
		return err
	}
	if b.world.Locked() {
		return ErrWorldLocked
	}
	b.b2.SetTransform(position.b2(), angle)
	return nil
}

func (b *Body) SetLinearVelocity(v Vec2) error {
	if err := b.check(); err != nil {
		return err
	}
	b.b2.SetLinearVelocity(v.b2())
	return nil
}

func (b *Body) SetAngularVelocity(w float64) error {
	if err := b.check(); err != nil {
		return err
	}
	b.b2.SetAngularVelocity(w)
	return nil
}

func (b *Body) check() error {
	if b == nil || b.world == nil || b.b2 == nil {
		return ErrInvalidBody
	}
	return nil
}
