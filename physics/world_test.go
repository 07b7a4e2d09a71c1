package physics

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

type recordingListener struct {
	begins []Contact
	ends   []Contact
}

func (l *recordingListener) BeginContact(c Contact) { l.begins = append(l.begins, c) }
func (l *recordingListener) EndContact(c Contact) { l.ends = append(l.ends, c) }

func staticBox(t *testing.T, w *World, center Vec2, hx, hy float64, filter Filter) *Fixture {
	t.Helper()
	body, err := w.CreateBody(BodyDef{Type: StaticBody, UserData: UserData{Role: RoleWall}})
	require.NoError(t, err)
	f, err := body.CreateFixture(FixtureDef{Shape: Box(hx, hy, center), Restitution: 0.4, Filter: filter})
	require.NoError(t, err)
	return f
}

func dynamicBox(t *testing.T, w *World, position Vec2, shape Shape, density float64, filter Filter) (*Body, *Fixture) {
	t.Helper()
	body, err := w.CreateBody(BodyDef{Type: DynamicBody, Position: position})
	require.NoError(t, err)
	f, err := body.CreateFixture(FixtureDef{Shape: shape, Density: density, Filter: filter})
	require.NoError(t, err)
	return body, f
}

func TestMassData(t *testing.T) {
	t.Run("Centred box", func(t *testing.T) {
		body, _ := dynamicBox(t, NewWorld(Vec2{}), Vec2{}, Box(0.1, 0.1, Vec2{}), 2, Filter{})
		assert.InDelta(t, 0.08, body.Mass(), delta)
		assert.InDelta(t, 0.08*(0.04+0.04)/12, body.Inertia(), delta)
		assert.InDelta(t, 0, body.LocalCenter().X, delta)
		assert.InDelta(t, 0, body.LocalCenter().Y, delta)
	})

	t.Run("Inertia is reported about the origin", func(t *testing.T) {
		body, _ := dynamicBox(t, NewWorld(Vec2{}), Vec2{}, Box(0.1, 0.1, V(0.1, 0.1)), 2, Filter{})

		central := 0.08 * (0.04 + 0.04) / 12
		assert.InDelta(t, 0.08, body.Mass(), delta)
		assert.InDelta(t, 0.1, body.LocalCenter().X, delta)
		assert.InDelta(t, 0.1, body.LocalCenter().Y, delta)
		assert.InDelta(t, central+0.08*0.02, body.Inertia(), delta)
	})

	t.Run("Circle", func(t *testing.T) {
		body, _ := dynamicBox(t, NewWorld(Vec2{}), Vec2{}, &Circle{Radius: 0.5}, 1, Filter{})
		mass := math.Pi * 0.25
		assert.InDelta(t, mass, body.Mass(), delta)
		assert.InDelta(t, mass*0.125, body.Inertia(), delta)
	})

	t.Run("Sensors without density keep the unit mass", func(t *testing.T) {
		body, f := dynamicBox(t, NewWorld(Vec2{}), Vec2{}, Box(0.1, 0.1, Vec2{}), 0, Filter{})
		assert.InDelta(t, 1, body.Mass(), delta)
		assert.Equal(t, DefaultFilter, f.Filter())
	})

	t.Run("Invalid shapes", func(t *testing.T) {
		_, err := NewPolygon(V(0, 0), V(1, 0))
		assert.ErrorIs(t, err, ErrInvalidShape)
		_, err = NewPolygon(V(0, 0), V(1, 0), V(2, 0))
		assert.ErrorIs(t, err, ErrInvalidShape)

		body, err := NewWorld(Vec2{}).CreateBody(BodyDef{Type: StaticBody})
		require.NoError(t, err)
		_, err = body.CreateFixture(FixtureDef{})
		assert.ErrorIs(t, err, ErrInvalidShape)
		_, err = body.CreateFixture(FixtureDef{Shape: &Circle{}})
		assert.ErrorIs(t, err, ErrInvalidShape)
		_, err = body.CreateFixture(FixtureDef{Shape: &Edge{V1: V(1, 1), V2: V(1, 1)}})
		assert.ErrorIs(t, err, ErrInvalidShape)
		assert.Empty(t, body.Fixtures())
	})
}

func TestFilterAccepts(t *testing.T) {
	assert.True(t, SensorFilter.Accepts(WallFilter))
	assert.True(t, WallFilter.Accepts(SensorFilter))
	assert.False(t, SensorFilter.Accepts(ChassisFilter))
	assert.False(t, SensorFilter.Accepts(Filter{CategoryBits: 0x0001, MaskBits: 0x0001}))
	assert.False(t, SensorFilter.Accepts(MarkerFilter))
	assert.False(t, ChassisFilter.Accepts(GoalFilter))
}

func TestRayCast(t *testing.T) {
	p1, p2 := V(0, 0), V(10, 0)

	t.Run("Clipping only lets closer candidates through", func(t *testing.T) {
		w := NewWorld(Vec2{})
		staticBox(t, w, V(7.5, 0), 0.5, 0.5, WallFilter)
		near := staticBox(t, w, V(3.5, 0), 0.5, 0.5, WallFilter)

		var seen []*Fixture
		var fractions []float64
		require.NoError(t, w.RayCast(func(f *Fixture, point, normal Vec2, fraction float64) float64 {
			seen = append(seen, f)
			fractions = append(fractions, fraction)
			return fraction
		}, p1, p2))

		require.NotEmpty(t, seen)
		assert.Equal(t, near, seen[len(seen)-1])
		assert.InDelta(t, 0.3, fractions[len(fractions)-1], delta)
		assert.True(t, sort.IsSorted(sort.Reverse(sort.Float64Slice(fractions))))
	})

	t.Run("Hit point and normal", func(t *testing.T) {
		w := NewWorld(Vec2{})
		staticBox(t, w, V(3.5, 0), 0.5, 0.5, WallFilter)

		calls := 0
		require.NoError(t, w.RayCast(func(f *Fixture, point, normal Vec2, fraction float64) float64 {
			calls++
			assert.InDelta(t, 3, point.X, delta)
			assert.InDelta(t, -1, normal.X, delta)
			assert.Equal(t, RoleWall, f.Body().UserData().Role)
			return fraction
		}, p1, p2))
		assert.Equal(t, 1, calls)
	})

	t.Run("Equal distance candidates are reported once after a clip", func(t *testing.T) {
		w := NewWorld(Vec2{})
		staticBox(t, w, V(3.5, 0), 0.5, 0.5, WallFilter)
		staticBox(t, w, V(3.5, 0), 0.5, 0.5, WallFilter)

		calls := 0
		require.NoError(t, w.RayCast(func(_ *Fixture, _, _ Vec2, fraction float64) float64 {
			calls++
			return fraction
		}, p1, p2))
		assert.Equal(t, 1, calls)
	})

	t.Run("Continuing does not undo a clip", func(t *testing.T) {
		w := NewWorld(Vec2{})
		staticBox(t, w, V(3.5, 0), 0.5, 0.5, WallFilter)
		staticBox(t, w, V(5.5, 0), 0.5, 0.5, WallFilter)
		staticBox(t, w, V(7.5, 0), 0.5, 0.5, WallFilter)

		var fractions []float64
		require.NoError(t, w.RayCast(func(_ *Fixture, _, _ Vec2, fraction float64) float64 {
			fractions = append(fractions, fraction)
			if len(fractions) == 1 {
				return fraction
			}
			return 1
		}, p1, p2))

		require.NotEmpty(t, fractions)
		for _, f := range fractions[1:] {
			assert.Less(t, f, fractions[0])
		}
	})

	t.Run("Negative return continues unclipped", func(t *testing.T) {
		w := NewWorld(Vec2{})
		staticBox(t, w, V(3.5, 0), 0.5, 0.5, WallFilter)
		staticBox(t, w, V(7.5, 0), 0.5, 0.5, WallFilter)

		calls := 0
		require.NoError(t, w.RayCast(func(*Fixture, Vec2, Vec2, float64) float64 {
			calls++
			return -1
		}, p1, p2))
		assert.Equal(t, 2, calls)
	})

	t.Run("Zero terminates", func(t *testing.T) {
		w := NewWorld(Vec2{})
		staticBox(t, w, V(3.5, 0), 0.5, 0.5, WallFilter)
		staticBox(t, w, V(7.5, 0), 0.5, 0.5, WallFilter)

		calls := 0
		require.NoError(t, w.RayCast(func(*Fixture, Vec2, Vec2, float64) float64 {
			calls++
			return 0
		}, p1, p2))
		assert.Equal(t, 1, calls)
	})

	t.Run("Circles and edges", func(t *testing.T) {
		w := NewWorld(Vec2{})
		body, err := w.CreateBody(BodyDef{Type: StaticBody, Position: V(5, 0)})
		require.NoError(t, err)
		_, err = body.CreateFixture(FixtureDef{Shape: &Circle{Radius: 1}})
		require.NoError(t, err)
		_, err = body.CreateFixture(FixtureDef{Shape: &Edge{V1: V(-3, -1), V2: V(-3, 1)}})
		require.NoError(t, err)

		var fractions []float64
		require.NoError(t, w.RayCast(func(_ *Fixture, _, _ Vec2, fraction float64) float64 {
			fractions = append(fractions, fraction)
			return -1
		}, p1, p2))
		require.Len(t, fractions, 2)
		sort.Float64s(fractions)
		assert.InDelta(t, 0.2, fractions[0], delta)
		assert.InDelta(t, 0.4, fractions[1], delta)
	})

	t.Run("World is locked inside the callback", func(t *testing.T) {
		w := NewWorld(Vec2{})
		f := staticBox(t, w, V(3.5, 0), 0.5, 0.5, WallFilter)

		require.NoError(t, w.RayCast(func(*Fixture, Vec2, Vec2, float64) float64 {
			assert.ErrorIs(t, f.Body().SetTransform(V(1, 1), 0), ErrWorldLocked)
			assert.ErrorIs(t, w.Step(0.1), ErrWorldLocked)
			assert.ErrorIs(t, w.RayCast(func(*Fixture, Vec2, Vec2, float64) float64 { return -1 }, p1, p2), ErrWorldLocked)
			return -1
		}, p1, p2))
		assert.NoError(t, f.Body().SetTransform(V(1, 1), 0))
	})

	t.Run("Moved bodies are found at their new place", func(t *testing.T) {
		w := NewWorld(Vec2{})
		f := staticBox(t, w, Vec2{}, 0.5, 0.5, WallFilter)
		require.NoError(t, f.Body().SetTransform(V(3.5, 0), 0))

		var fraction float64
		require.NoError(t, w.RayCast(func(_ *Fixture, _, _ Vec2, frac float64) float64 {
			fraction = frac
			return frac
		}, p1, p2))
		assert.InDelta(t, 0.3, fraction, delta)
	})
}

func TestStep(t *testing.T) {
	t.Run("Torque spins a dynamic body", func(t *testing.T) {
		w := NewWorld(Vec2{})
		body, _ := dynamicBox(t, w, Vec2{}, Box(0.1, 0.1, Vec2{}), 2, Filter{})

		require.NoError(t, body.ApplyTorque(0.01, true))
		require.NoError(t, w.Step(0.1))
		assert.Greater(t, body.AngularVelocity(), 0.0)
		assert.Greater(t, body.Angle(), 0.0)

		spin := body.AngularVelocity()
		require.NoError(t, w.Step(0.1))
		assert.InDelta(t, spin, body.AngularVelocity(), delta, "torque is cleared after a step")
	})

	t.Run("Friction joint clamps the impulse", func(t *testing.T) {
		w := NewWorld(Vec2{})
		ground, err := w.CreateBody(BodyDef{Type: StaticBody})
		require.NoError(t, err)
		body, _ := dynamicBox(t, w, Vec2{}, Box(0.5, 0.5, Vec2{}), 1, Filter{})
		joint, err := w.CreateFrictionJoint(FrictionJointDef{BodyA: ground, BodyB: body, MaxForce: 2, MaxTorque: 0})
		require.NoError(t, err)
		assert.InDelta(t, 2, joint.MaxForce(), delta)
		assert.Len(t, w.Joints(), 1)

		require.NoError(t, body.SetLinearVelocity(V(1, 0)))
		require.NoError(t, w.Step(0.1))
		assert.InDelta(t, 0.8, body.LinearVelocity().X, 1e-6)

		for i := 0; i < 10; i++ {
			require.NoError(t, w.Step(0.1))
		}
		assert.InDelta(t, 0, body.LinearVelocity().X, 1e-6)
	})

	t.Run("Solid contact stops the body and is reported", func(t *testing.T) {
		w := NewWorld(Vec2{})
		listener := &recordingListener{}
		w.SetContactListener(listener)
		wall := staticBox(t, w, V(1, 0), 0.1, 1, WallFilter)

		body, chassis := dynamicBox(t, w, V(0.75, 0), Box(0.1, 0.1, Vec2{}), 1, ChassisFilter)
		require.NoError(t, body.SetLinearVelocity(V(2, 0)))

		for i := 0; i < 5 && len(listener.begins) == 0; i++ {
			require.NoError(t, w.Step(0.1))
		}
		require.Len(t, listener.begins, 1)
		assert.True(t, listener.begins[0].Involves(body))
		assert.False(t, listener.begins[0].IsSensor())
		assert.Equal(t, wall, listener.begins[0].Other(body))
		assert.Equal(t, chassis, listener.begins[0].Other(wall.Body()))

		require.NoError(t, w.Step(0.1))
		assert.Less(t, body.Position().X, 0.8+0.02)
		assert.Less(t, body.LinearVelocity().X, 0.0)
	})

	t.Run("Filtered pairs pass through", func(t *testing.T) {
		w := NewWorld(Vec2{})
		listener := &recordingListener{}
		w.SetContactListener(listener)
		staticBox(t, w, V(1, 0), 0.1, 1, GoalFilter)

		body, _ := dynamicBox(t, w, V(0.75, 0), Box(0.1, 0.1, Vec2{}), 1, ChassisFilter)
		require.NoError(t, body.SetLinearVelocity(V(1, 0)))

		require.NoError(t, w.Step(0.1))
		assert.InDelta(t, 0.85, body.Position().X, 1e-6)
		assert.Empty(t, listener.begins)
	})

	t.Run("Invalid step", func(t *testing.T) {
		w := NewWorld(Vec2{})
		assert.ErrorIs(t, w.Step(0), ErrInvalidStep)
		assert.ErrorIs(t, w.Step(math.NaN()), ErrInvalidStep)
	})
}

func TestDestroyBody(t *testing.T) {
	w := NewWorld(Vec2{})
	ground, err := w.CreateBody(BodyDef{Type: StaticBody})
	require.NoError(t, err)
	body, err := w.CreateBody(BodyDef{Type: DynamicBody})
	require.NoError(t, err)
	_, err = w.CreateFrictionJoint(FrictionJointDef{BodyA: ground, BodyB: body, MaxForce: 1, MaxTorque: 1})
	require.NoError(t, err)

	require.NoError(t, w.DestroyBody(body))
	assert.Len(t, w.Bodies(), 1)
	assert.Empty(t, w.Joints())
	assert.ErrorIs(t, body.ApplyTorque(1, true), ErrInvalidBody)
	assert.ErrorIs(t, body.SetTransform(Vec2{}, 0), ErrInvalidBody)
	assert.ErrorIs(t, w.DestroyBody(body), ErrInvalidBody)

	_, err = w.CreateFrictionJoint(FrictionJointDef{BodyA: ground, BodyB: body})
	assert.ErrorIs(t, err, ErrInvalidBody)
}

func TestBodyFrames(t *testing.T) {
	w := NewWorld(Vec2{})
	body, err := w.CreateBody(BodyDef{Type: StaticBody, Position: V(1, 2), Angle: math.Pi / 2})
	require.NoError(t, err)

	p := body.GetWorldPoint(V(1, 0))
	assert.InDelta(t, 1, p.X, delta)
	assert.InDelta(t, 3, p.Y, delta)

	back := body.GetLocalPoint(p)
	assert.InDelta(t, 1, back.X, delta)
	assert.InDelta(t, 0, back.Y, delta)

	r := V(1, 0).Rotate(math.Pi / 2)
	assert.InDelta(t, 0, r.X, delta)
	assert.InDelta(t, 1, r.Y, delta)
	assert.InDelta(t, math.Pi/2, r.Angle(), delta)
}
