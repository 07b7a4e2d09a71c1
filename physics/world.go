package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/bytearena/box2d"
	"github.com/google/uuid"
)

var ErrInvalidStep = errors.New("invalid time step")

// Solver iterations per step.
const (
	VelocityIterations = 4
	PositionIterations = 4
)

// RayCastCallback is called for every fixture the ray crosses. Returning a
// negative value ignores the fixture, zero stops the cast, a fraction clips
// the ray to that fraction and one continues without clipping. Once the ray
// is clipped only candidates strictly closer than the clip are reported.
type RayCastCallback func(fixture *Fixture, point, normal Vec2, fraction float64) float64

// Contact is a touching pair of fixtures.
type Contact struct {
	FixtureA *Fixture
	FixtureB *Fixture
}

// IsSensor reports whether either side is a sensor fixture.
func (c Contact) IsSensor() bool {
	return c.FixtureA.IsSensor() || c.FixtureB.IsSensor()
}

// Other returns the fixture of the pair that is not on body b.
func (c Contact) Other(b *Body) *Fixture {
	if c.FixtureA.body == b {
		return c.FixtureB
	}
	return c.FixtureA
}

// Involves reports whether one side of the contact belongs to b.
func (c Contact) Involves(b *Body) bool {
	return c.FixtureA.body == b || c.FixtureB.body == b
}

// ContactListener is notified when fixture pairs start and stop touching.
// It runs inside Step, so it must not create, destroy or move bodies.
type ContactListener interface {
	BeginContact(c Contact)
	EndContact(c Contact)
}

// World owns a box2d world and the wrappers of everything created in it.
type World struct {
	b2       *box2d.B2World
	bodies   []*Body
	joints   []*FrictionJoint
	listener ContactListener
	casting  bool
}

// NewWorld creates an empty world.
func NewWorld(gravity Vec2) *World {
	b2 := box2d.MakeB2World(gravity.b2())
	w := &World{b2: &b2}
	w.b2.SetContactListener(contactBridge{world: w})
	return w
}

// Locked is true while the world is stepping or casting a ray.
func (w *World) Locked() bool {
	return w.b2.IsLocked() || w.casting
}

// Bodies returns the live bodies in creation order.
func (w *World) Bodies() []*Body {
	return append([]*Body(nil), w.bodies...)
}

// Joints returns the live friction joints.
func (w *World) Joints() []*FrictionJoint {
	return append([]*FrictionJoint(nil), w.joints...)
}

// SetContactListener replaces the contact listener. nil disables notifications.
func (w *World) SetContactListener(l ContactListener) {
	w.listener = l
}

// CreateBody adds a body to the world.
func (w *World) CreateBody(def BodyDef) (*Body, error) {
	if w.Locked() {
		return nil, ErrWorldLocked
	}

	b := &Body{
		id:       uuid.New(),
		world:    w,
		bodyType: def.Type,
		userData: def.UserData,
	}

	bd := box2d.MakeB2BodyDef()
	bd.Type = def.Type.b2()
	bd.Position = def.Position.b2()
	bd.Angle = def.Angle
	bd.LinearDamping = def.LinearDamping
	bd.AngularDamping = def.AngularDamping
	bd.UserData = b

	b.b2 = w.b2.CreateBody(&bd)
	w.bodies = append(w.bodies, b)
	return b, nil
}

// DestroyBody removes a body with its fixtures and joints.
func (w *World) DestroyBody(b *Body) error {
	if w.Locked() {
		return ErrWorldLocked
	}
	if b.check() != nil || b.world != w {
		return ErrInvalidBody
	}

	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	joints := w.joints[:0]
	for _, j := range w.joints {
		if j.bodyA != b && j.bodyB != b {
			joints = append(joints, j)
		}
	}
	w.joints = joints

	w.b2.DestroyBody(b.b2)
	b.world, b.b2 = nil, nil
	return nil
}

// Step advances the world by dt seconds.
func (w *World) Step(dt float64) error {
	if w.Locked() {
		return ErrWorldLocked
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("step %v: %w", dt, ErrInvalidStep)
	}
	w.b2.Step(dt, VelocityIterations, PositionIterations)
	return nil
}

// RayCast casts a ray from p1 to p2 and reports candidate fixtures to cb.
func (w *World) RayCast(cb RayCastCallback, p1, p2 Vec2) error {
	if cb == nil {
		return fmt.Errorf("ray cast: nil callback")
	}
	if w.Locked() {
		return ErrWorldLocked
	}

	w.casting = true
	defer func() { w.casting = false }()

	// The tree takes any positive return as the new clip, so the closest clip
	// is kept here and candidates at or past it are skipped.
	clip := 1.0
	w.b2.RayCast(func(f *box2d.B2Fixture, point, normal box2d.B2Vec2, fraction float64) float64 {
		fixture := fixtureOf(f)
		if fixture == nil || (clip < 1 && fraction >= clip) {
			return -1
		}

		value := cb(fixture, vec(point), vec(normal), fraction)
		switch {
		case value < 0:
			return -1
		case value == 0:
			return 0
		case value < clip:
			clip = value
		}
		return clip
	}, p1.b2(), p2.b2())
	return nil
}

// contactBridge turns engine contacts into Contact values for the listener.
type contactBridge struct {
	world *World
}

func (b contactBridge) contact(c box2d.B2ContactInterface) (Contact, bool) {
	if b.world.listener == nil {
		return Contact{}, false
	}
	fa, fb := fixtureOf(c.GetFixtureA()), fixtureOf(c.GetFixtureB())
	if fa == nil || fb == nil {
		return Contact{}, false
	}
	return Contact{FixtureA: fa, FixtureB: fb}, true
}

func (b contactBridge) BeginContact(c box2d.B2ContactInterface) {
	if contact, ok := b.contact(c); ok {
		b.world.listener.BeginContact(contact)
	}
}

func (b contactBridge) EndContact(c box2d.B2ContactInterface) {
	if contact, ok := b.contact(c); ok {
		b.world.listener.EndContact(contact)
	}
}

func (contactBridge) PreSolve(box2d.B2ContactInterface, box2d.B2Manifold) {}
func (contactBridge) PostSolve(box2d.B2ContactInterface, *box2d.B2ContactImpulse) {}
