// Package car drives a dynamic body through the physics world and reads its
// range sensors once per tick.
package car

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/beka-birhanu/vinom-sim/physics"
	"github.com/beka-birhanu/vinom-sim/sensor"
)

var (
	ErrInvalidConfig = errors.New("invalid car config")
	ErrUnknownMove   = errors.New("unknown move")
)

// MoveState is the actuation an external controller asked for.
type MoveState int

const (
	Stopped MoveState = iota
	MoveForward
	MoveBackward
	RotateLeft
	RotateRight
)

var moveNames = [...]string{"stop", "forward", "backward", "left", "right"}

func (m MoveState) String() string {
	if m < 0 || int(m) >= len(moveNames) {
		return fmt.Sprintf("MoveState(%d)", int(m))
	}
	return moveNames[m]
}

// ParseMoveState is the inverse of String.
func ParseMoveState(s string) (MoveState, error) {
	for i, name := range moveNames {
		if strings.EqualFold(s, name) {
			return MoveState(i), nil
		}
	}
	return Stopped, fmt.Errorf("%q: %w", s, ErrUnknownMove)
}

// OneHot encodes m as a label vector with one slot per move, stop first.
func (m MoveState) OneHot() []int {
	out := make([]int, len(moveNames))
	if m >= 0 && int(m) < len(moveNames) {
		out[m] = 1
	}
	return out
}

func (m MoveState) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MoveState) UnmarshalText(text []byte) error {
	parsed, err := ParseMoveState(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Config holds the body, drivetrain and sensor parameters.
type Config struct {
	Position          physics.Vec2  `yaml:"-"`
	Angle             float64       `yaml:"angle"`
	Width             float64       `yaml:"width"`
	Height            float64       `yaml:"height"`
	Density           float64       `yaml:"density"`
	Restitution       float64       `yaml:"restitution"`
	AngularDamping    float64       `yaml:"angulardamping"`
	Gravity           float64       `yaml:"gravity"`
	ForceFactor       float64       `yaml:"forcefactor"`
	TorqueFactor      float64       `yaml:"torquefactor"`
	ExplorationTorque float64       `yaml:"explorationtorque"`
	MoveForce         float64       `yaml:"moveforce"`
	RotateTorque      float64       `yaml:"rotatetorque"`
	HaltOnCollision   bool          `yaml:"haltoncollision"`
	Markers           bool          `yaml:"markers"`
	Sensor            sensor.Config `yaml:"sensor"`
}

// DefaultConfig returns the parameters the training episodes were recorded with.
func DefaultConfig() Config {
	return Config{
		Angle:             math.Pi,
		Width:             0.2,
		Height:            0.2,
		Density:           2,
		Restitution:       0.5,
		AngularDamping:    6,
		Gravity:           10,
		ForceFactor:       1.35,
		TorqueFactor:      8.975,
		ExplorationTorque: 1.85,
		MoveForce:         1.1,
		RotateTorque:      1.0,
		Markers:           true,
		Sensor:            sensor.DefaultConfig(),
	}
}

// Validate rejects parameters that cannot build a body.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: chassis %vx%v", ErrInvalidConfig, c.Width, c.Height)
	case c.Density <= 0:
		return fmt.Errorf("%w: density %v", ErrInvalidConfig, c.Density)
	case c.Gravity < 0 || c.ForceFactor < 0 || c.TorqueFactor < 0:
		return fmt.Errorf("%w: negative friction parameters", ErrInvalidConfig)
	}
	return nil
}

// State is a snapshot of the car for one tick.
type State struct {
	Position        physics.Vec2               `json:"position" bson:"position"`
	Angle           float64                    `json:"angle" bson:"angle"`
	LinearVelocity  physics.Vec2               `json:"linearVelocity" bson:"linearVelocity"`
	AngularVelocity float64                    `json:"angularVelocity" bson:"angularVelocity"`
	Collision       bool                       `json:"collision" bson:"collision"`
	Move            MoveState                  `json:"move" bson:"move"`
	Readings        map[float64]sensor.Reading `json:"-" bson:"-"`
}

type pose struct {
	position physics.Vec2
	angle    float64
}

// Car owns one dynamic body and its sensor fan.
type Car struct {
	cfg     Config
	world   *physics.World
	body    *physics.Body
	chassis *physics.Fixture
	joint   *physics.FrictionJoint
	sensors *sensor.Array
	markers map[float64]*physics.Body

	initial   pose
	move      MoveState
	collision bool
	readings  map[float64]sensor.Reading
}

// New creates the car body, its friction joint against ground and one marker
// body per sensor angle.
func New(world *physics.World, ground *physics.Body, cfg Config) (*Car, error) {
	if world == nil || ground == nil {
		return nil, fmt.Errorf("new car: %w", physics.ErrInvalidBody)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sensors, err := sensor.New(cfg.Sensor)
	if err != nil {
		return nil, fmt.Errorf("new car: %w", err)
	}

	c := &Car{
		cfg:      cfg,
		world:    world,
		sensors:  sensors,
		markers:  make(map[float64]*physics.Body, len(sensors.Angles())),
		initial:  pose{position: cfg.Position, angle: cfg.Angle},
		readings: map[float64]sensor.Reading{},
	}

	if err := c.createBody(); err != nil {
		return nil, err
	}
	if err := c.createJoint(ground); err != nil {
		return nil, err
	}
	if cfg.Markers {
		if err := c.createMarkers(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Car) createBody() error {
	body, err := c.world.CreateBody(physics.BodyDef{
		Type:           physics.DynamicBody,
		Position:       c.initial.position,
		Angle:          c.initial.angle,
		AngularDamping: c.cfg.AngularDamping,
		UserData:       physics.UserData{Role: physics.RoleCar},
	})
	if err != nil {
		return fmt.Errorf("create car body: %w", err)
	}
	c.body = body

	hw, hh := c.cfg.Width/2, c.cfg.Height/2
	c.chassis, err = body.CreateFixture(physics.FixtureDef{
		Shape:       physics.Box(hw, hh, physics.Vec2{}),
		Density:     c.cfg.Density,
		Restitution: c.cfg.Restitution,
		Filter:      physics.ChassisFilter,
		UserData:    physics.UserData{Role: physics.RoleChassis, Style: physics.ChassisStyle},
	})
	if err != nil {
		return fmt.Errorf("create chassis: %w", err)
	}

	// Points along the forward axis. Shares the chassis filter so the rays skip it.
	triangle, err := physics.NewPolygon(
		physics.V(-hw/3, -hh/3),
		physics.V(hw/3, -hh/3),
		physics.V(0, hh/3),
	)
	if err != nil {
		return fmt.Errorf("create direction: %w", err)
	}
	_, err = body.CreateFixture(physics.FixtureDef{
		Shape:    triangle,
		IsSensor: true,
		Filter:   physics.ChassisFilter,
		UserData: physics.UserData{Role: physics.RoleDirection, Style: physics.DirectionStyle},
	})
	if err != nil {
		return fmt.Errorf("create direction: %w", err)
	}
	return nil
}

// createJoint derives the top-down friction limits from the body's mass and inertia.
func (c *Car) createJoint(ground *physics.Body) error {
	mass := c.body.Mass()
	radius := math.Sqrt(2 * c.body.Inertia() / mass)

	joint, err := c.world.CreateFrictionJoint(physics.FrictionJointDef{
		BodyA:            ground,
		BodyB:            c.body,
		LocalAnchorB:     c.body.LocalCenter(),
		CollideConnected: true,
		MaxForce:         c.cfg.ForceFactor * mass * c.cfg.Gravity,
		MaxTorque:        c.cfg.TorqueFactor * mass * radius * c.cfg.Gravity,
		UserData:         physics.UserData{Role: physics.RoleFriction},
	})
	if err != nil {
		return fmt.Errorf("create friction joint: %w", err)
	}
	c.joint = joint
	return nil
}

func (c *Car) createMarkers() error {
	for _, angle := range c.sensors.Angles() {
		marker, err := c.world.CreateBody(physics.BodyDef{
			Type:     physics.StaticBody,
			Position: sensor.NoHit,
			UserData: physics.UserData{Role: physics.RoleSensor},
		})
		if err != nil {
			return fmt.Errorf("create marker %v: %w", angle, err)
		}

		for _, edge := range []*physics.Edge{
			{V1: physics.V(-0.05, 0), V2: physics.V(0.05, 0)},
			{V1: physics.V(0, -0.05), V2: physics.V(0, 0.05)},
		} {
			_, err := marker.CreateFixture(physics.FixtureDef{
				Shape:    edge,
				IsSensor: true,
				Filter:   physics.MarkerFilter,
				UserData: physics.UserData{Role: physics.RoleSensor, Style: physics.SensorStyle},
			})
			if err != nil {
				return fmt.Errorf("create marker %v: %w", angle, err)
			}
		}
		c.markers[angle] = marker
	}
	return nil
}

func (c *Car) Body() *physics.Body { return c.body }
func (c *Car) Chassis() *physics.Fixture { return c.chassis }
func (c *Car) Joint() *physics.FrictionJoint { return c.joint }
func (c *Car) Sensors() *sensor.Array { return c.sensors }
func (c *Car) Move() MoveState { return c.move }
func (c *Car) Collision() bool { return c.collision }
func (c *Car) Marker(angle float64) *physics.Body { return c.markers[angle] }

// SetMove records the actuation to apply from the next step on.
func (c *Car) SetMove(m MoveState) error {
	if m < Stopped || m > RotateRight {
		return fmt.Errorf("%v: %w", m, ErrUnknownMove)
	}
	c.move = m
	return nil
}

// Actuate applies the force or torque of the current move state.
func (c *Car) Actuate() error {
	if c.collision && c.cfg.HaltOnCollision {
		return nil
	}

	switch c.move {
	case Stopped:
		return c.body.ApplyTorque(c.cfg.ExplorationTorque, true)
	case RotateLeft:
		return c.body.ApplyTorque(c.cfg.RotateTorque, true)
	case RotateRight:
		return c.body.ApplyTorque(-c.cfg.RotateTorque, true)
	case MoveForward, MoveBackward:
		direction := 1.0
		if c.move == MoveBackward {
			direction = -1
		}
		force := c.body.GetWorldVector(physics.V(0, c.cfg.MoveForce*direction))
		return c.body.ApplyForce(force, c.body.GetWorldPoint(physics.Vec2{}), true)
	}
	return nil
}

// Sense casts every sensor ray and moves the markers to the hit points.
func (c *Car) Sense() error {
	readings, err := c.sensors.Sense(c.body, c.world)
	if err != nil {
		return err
	}
	c.readings = readings

	for angle, marker := range c.markers {
		if err := marker.SetTransform(readings[angle].Point, 0); err != nil {
			return fmt.Errorf("move marker %v: %w", angle, err)
		}
	}
	return nil
}

// Step actuates, advances the world by dt and reads the sensors.
func (c *Car) Step(dt float64) error {
	if err := c.Actuate(); err != nil {
		return fmt.Errorf("actuate: %w", err)
	}
	if err := c.world.Step(dt); err != nil {
		return fmt.Errorf("world step: %w", err)
	}
	if err := c.Sense(); err != nil {
		return fmt.Errorf("sense: %w", err)
	}
	return nil
}

// Reset puts the car back at its construction pose without recreating the body.
func (c *Car) Reset() error {
	if err := c.body.SetLinearVelocity(physics.Vec2{}); err != nil {
		return err
	}
	if err := c.body.SetAngularVelocity(0); err != nil {
		return err
	}
	if err := c.body.SetTransform(c.initial.position, c.initial.angle); err != nil {
		return err
	}

	c.move = Stopped
	c.collision = false
	c.readings = map[float64]sensor.Reading{}
	for angle, marker := range c.markers {
		if err := marker.SetTransform(sensor.NoHit, 0); err != nil {
			return fmt.Errorf("reset marker %v: %w", angle, err)
		}
	}
	return nil
}

// Relocate changes the construction pose and resets to it.
func (c *Car) Relocate(position physics.Vec2, angle float64) error {
	c.initial = pose{position: position, angle: angle}
	return c.Reset()
}

// OnContact raises the collision flag for solid contacts involving the car.
func (c *Car) OnContact(contact physics.Contact) {
	if contact.IsSensor() || !contact.Involves(c.body) {
		return
	}
	c.collision = true
}

// Readings returns a copy of the last tick's readings.
func (c *Car) Readings() map[float64]sensor.Reading {
	out := make(map[float64]sensor.Reading, len(c.readings))
	for angle, r := range c.readings {
		out[angle] = r
	}
	return out
}

// OrderedReadings returns the last tick's readings in sensor angle order.
// Angles not sensed yet are left out.
func (c *Car) OrderedReadings() []sensor.Reading {
	out := make([]sensor.Reading, 0, len(c.readings))
	for _, angle := range c.sensors.Angles() {
		if r, ok := c.readings[angle]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Distances is the feature vector ordered by angle. Rays without a hit report
// the full sensor range.
func (c *Car) Distances() []float64 {
	angles := c.sensors.Angles()
	out := make([]float64, len(angles))
	for i, angle := range angles {
		r, ok := c.readings[angle]
		if !ok || !r.Hit {
			out[i] = c.sensors.MaxDistance()
			continue
		}
		out[i] = r.Distance
	}
	return out
}

// State snapshots the car.
func (c *Car) State() State {
	return State{
		Position:        c.body.Position(),
		Angle:           c.body.Angle(),
		LinearVelocity:  c.body.LinearVelocity(),
		AngularVelocity: c.body.AngularVelocity(),
		Collision:       c.collision,
		Move:            c.move,
		Readings:        c.Readings(),
	}
}
