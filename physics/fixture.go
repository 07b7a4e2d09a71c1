package physics

import "github.com/bytearena/box2d"

// FixtureDef describes a fixture before it is attached to a body.
// A zero Filter selects DefaultFilter.
type FixtureDef struct {
	Shape       Shape
	Density     float64
	Friction    float64
	Restitution float64
	IsSensor    bool
	Filter      Filter
	UserData    UserData
}

// Fixture is a shape attached to a body.
type Fixture struct {
	body     *Body
	b2       *box2d.B2Fixture
	userData UserData
}

func (f *Fixture) Body() *Body { return f.body }
func (f *Fixture) UserData() UserData { return f.userData }
func (f *Fixture) Density() float64 { return f.b2.GetDensity() }
func (f *Fixture) Friction() float64 { return f.b2.GetFriction() }
func (f *Fixture) Restitution() float64 { return f.b2.GetRestitution() }
func (f *Fixture) IsSensor() bool { return f.b2.IsSensor() }
func (f *Fixture) Filter() Filter { return filterOf(f.b2.GetFilterData()) }

// SetFilter replaces the fixture's filter data. Contacts are re-evaluated on
// the next step.
func (f *Fixture) SetFilter(filter Filter) {
	f.b2.SetFilterData(filter.b2())
}

// fixtureOf recovers the wrapper stored on an engine fixture.
func fixtureOf(f *box2d.B2Fixture) *Fixture {
	if f == nil {
		return nil
	}
	out, _ := f.GetUserData().(*Fixture)
	return out
}
