// Package simulation ties a maze, a physics world and a car into one
// single-threaded fixed-step loop. Nothing in here is shared between
// simulations; run one per goroutine.
package simulation

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/beka-birhanu/vinom-sim/car"
	"github.com/beka-birhanu/vinom-sim/follower"
	"github.com/beka-birhanu/vinom-sim/maze"
	"github.com/beka-birhanu/vinom-sim/physics"
	"github.com/beka-birhanu/vinom-sim/sensor"
)

// Frame is what one tick produces for recording and streaming. Readings and
// Distances follow the sensor angle order; Label is the one-hot move the car
// was driven with during the tick.
type Frame struct {
	Tick      int              `json:"tick" bson:"tick"`
	Seed      int64            `json:"seed" bson:"seed"`
	State     car.State        `json:"state" bson:"state"`
	Readings  []sensor.Reading `json:"readings" bson:"readings"`
	Distances []float64        `json:"distances" bson:"distances"`
	Label     []int            `json:"label" bson:"label"`
	Cell      maze.Coordinate  `json:"cell" bson:"cell"`
	Solved    bool             `json:"solved" bson:"solved"`
}

// Simulation is the explicit context every component is driven through.
type Simulation struct {
	cfg    Config
	seed   int64
	rng    *rand.Rand
	world  *physics.World
	ground *physics.Body
	maze   *maze.Maze
	walls  *physics.Body
	car    *car.Car
	pilot  *follower.Follower
	tick   int
	solved bool
}

// New builds the world, generates the maze from seed and places the car on its start.
func New(cfg Config, seed int64) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:   cfg,
		seed:  seed,
		rng:   rand.New(rand.NewSource(seed)),
		world: physics.NewWorld(physics.Vec2{}),
	}

	var err error
	s.ground, err = s.world.CreateBody(physics.BodyDef{
		Type:     physics.StaticBody,
		UserData: physics.UserData{Role: physics.RoleGround},
	})
	if err != nil {
		return nil, fmt.Errorf("create ground: %w", err)
	}

	if s.maze, err = maze.New(cfg.Maze, s.rng); err != nil {
		return nil, err
	}
	if err = s.buildWalls(); err != nil {
		return nil, err
	}

	carCfg := cfg.Car
	carCfg.Position = toVec(s.maze.Start())
	if s.car, err = car.New(s.world, s.ground, carCfg); err != nil {
		return nil, err
	}

	s.world.SetContactListener(s)
	return s, nil
}

func toVec(p maze.Point) physics.Vec2 {
	return physics.Vec2{X: p.X, Y: p.Y}
}

func toPoint(v physics.Vec2) maze.Point {
	return maze.Point{X: v.X, Y: v.Y}
}

// buildWalls creates one static body holding a fixture per wall rectangle and
// a sensor circle on each landmark.
func (s *Simulation) buildWalls() error {
	origin := s.maze.Origin()
	walls, err := s.world.CreateBody(physics.BodyDef{
		Type:     physics.StaticBody,
		Position: toVec(origin),
		UserData: physics.UserData{Role: physics.RoleMaze},
	})
	if err != nil {
		return fmt.Errorf("create maze body: %w", err)
	}

	for _, r := range s.maze.Rectangles() {
		center := physics.V(r.X+r.Width/2-origin.X, r.Y+r.Height/2-origin.Y)
		_, err := walls.CreateFixture(physics.FixtureDef{
			Shape:       physics.Box(r.Width/2, r.Height/2, center),
			Restitution: 0.4,
			Filter:      physics.WallFilter,
			UserData:    physics.UserData{Role: physics.RoleWall, Style: physics.WallStyle},
		})
		if err != nil {
			return fmt.Errorf("create wall: %w", err)
		}
	}

	radius := s.maze.TileSize() / 4
	for _, landmark := range []struct {
		role  physics.Role
		style physics.Style
		point maze.Point
	}{
		{physics.RoleStart, physics.StartStyle, s.maze.Start()},
		{physics.RoleEnd, physics.EndStyle, s.maze.End()},
	} {
		_, err := walls.CreateFixture(physics.FixtureDef{
			Shape:    &physics.Circle{Center: toVec(landmark.point).Sub(toVec(origin)), Radius: radius},
			IsSensor: true,
			Filter:   physics.GoalFilter,
			UserData: physics.UserData{Role: landmark.role, Style: landmark.style},
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", landmark.role, err)
		}
	}

	s.walls = walls
	return nil
}

func (s *Simulation) Seed() int64 { return s.seed }
func (s *Simulation) Config() Config { return s.cfg }
func (s *Simulation) World() *physics.World { return s.world }
func (s *Simulation) Ground() *physics.Body { return s.ground }
func (s *Simulation) Maze() *maze.Maze { return s.maze }
func (s *Simulation) Walls() *physics.Body { return s.walls }
func (s *Simulation) Car() *car.Car { return s.car }
func (s *Simulation) Ticks() int { return s.tick }
func (s *Simulation) Solved() bool { return s.solved }

// Follower is the path follower driving the car, nil until the first followed
// tick or with the explore controller.
func (s *Simulation) Follower() *follower.Follower { return s.pilot }

// BeginContact forwards contacts to the car.
func (s *Simulation) BeginContact(c physics.Contact) {
	s.car.OnContact(c)
}

func (s *Simulation) EndContact(physics.Contact) {}

// drive lets the follower pick the next move, planning a path from the car's
// cell to the end the first time it is needed.
func (s *Simulation) drive() error {
	if s.cfg.Controller != ControllerFollow {
		return nil
	}

	state := s.car.State()
	if s.pilot == nil {
		points, err := s.maze.SolveFrom(toPoint(state.Position))
		if err != nil {
			return fmt.Errorf("plan path: %w", err)
		}
		path := make([]physics.Vec2, 0, len(points))
		for _, p := range points {
			path = append(path, toVec(p))
		}
		if s.pilot, err = follower.New(path, s.cfg.Tolerance); err != nil {
			return err
		}
	}
	return s.car.SetMove(s.pilot.Next(state.Position, state.Angle))
}

// Tick advances the simulation by one fixed time step.
func (s *Simulation) Tick() (Frame, error) {
	if err := s.drive(); err != nil {
		return Frame{}, err
	}
	if err := s.car.Step(s.cfg.TimeStep); err != nil {
		return Frame{}, err
	}
	s.tick++

	state := s.car.State()
	cell := s.maze.ToLocalCoordinate(toPoint(state.Position))
	if cell == s.maze.EndCoordinate() {
		s.solved = true
	}

	frame := Frame{
		Tick:      s.tick,
		Seed:      s.seed,
		State:     state,
		Readings:  s.car.OrderedReadings(),
		Distances: s.car.Distances(),
		Label:     state.Move.OneHot(),
		Cell:      cell,
		Solved:    s.solved,
	}

	if state.Collision && s.cfg.ResetOnCollision {
		s.pilot = nil
		if err := s.car.Reset(); err != nil {
			return frame, err
		}
	}
	return frame, nil
}

// Reset puts the car back on the start cell and clears the tick counter.
func (s *Simulation) Reset() error {
	s.tick = 0
	s.solved = false
	s.pilot = nil
	return s.car.Reset()
}

// Regenerate draws a new maze from the simulation's random source and
// rebuilds the walls in the same world.
func (s *Simulation) Regenerate() error {
	if err := s.maze.Randomize(s.rng); err != nil {
		return err
	}
	if err := s.world.DestroyBody(s.walls); err != nil {
		return fmt.Errorf("destroy maze body: %w", err)
	}
	if err := s.buildWalls(); err != nil {
		return err
	}

	s.tick = 0
	s.solved = false
	s.pilot = nil
	return s.car.Relocate(toVec(s.maze.Start()), s.cfg.Car.Angle)
}

// Run ticks until ticks frames were produced, the maze is solved and the
// config says to stop, sink fails or ctx is done. A non-positive ticks, or
// one above the configured maximum, uses the maximum.
func (s *Simulation) Run(ctx context.Context, ticks int, sink func(Frame) error) error {
	if ticks <= 0 || ticks > s.cfg.MaxTicks {
		ticks = s.cfg.MaxTicks
	}

	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := s.Tick()
		if err != nil {
			return err
		}
		if sink != nil {
			if err := sink(frame); err != nil {
				return err
			}
		}
		if frame.Solved && s.cfg.StopWhenSolved {
			return nil
		}
	}
	return nil
}
