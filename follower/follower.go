// Package follower steers a car along a precomputed path of waypoints using
// the same discrete moves an external controller would send. The move picked
// each tick is what recorded episodes store as the training label.
package follower

import (
	"errors"
	"math"

	"github.com/beka-birhanu/vinom-sim/car"
	"github.com/beka-birhanu/vinom-sim/physics"
)

// DefaultTolerance is both the waypoint radius and the heading band.
const DefaultTolerance = 0.075

var ErrEmptyPath = errors.New("path has no waypoints")

type turn int

const (
	straight turn = iota
	counterClockwise
	clockwise
)

// Follower walks its path one waypoint at a time. It is not safe for
// concurrent use.
type Follower struct {
	path        []physics.Vec2
	tolerance   float64
	target      int
	targetAngle float64
	turning     turn
	move        car.MoveState
}

// New copies path. A non-positive tolerance selects DefaultTolerance.
func New(path []physics.Vec2, tolerance float64) (*Follower, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Follower{
		path:      append([]physics.Vec2(nil), path...),
		tolerance: tolerance,
	}, nil
}

func (f *Follower) Finished() bool { return f.target == len(f.path) }
func (f *Follower) Move() car.MoveState { return f.move }

// Target is the index of the waypoint being driven to.
func (f *Follower) Target() int { return f.target }

// Next picks the move for a car at position with body angle angle.
func (f *Follower) Next(position physics.Vec2, angle float64) car.MoveState {
	f.advance(position, angle)
	f.move = f.steer(position, angle)
	return f.move
}

// advance moves on to the next waypoint once the current one is within reach
// and decides which way to turn towards it.
func (f *Follower) advance(position physics.Vec2, angle float64) {
	if f.Finished() || position.Distance(f.path[f.target]) >= f.tolerance {
		return
	}
	f.target++
	if !f.Finished() {
		f.aim(position, angle)
	}
}

func (f *Follower) aim(position physics.Vec2, angle float64) {
	f.targetAngle = normalize(f.path[f.target].Sub(position).Angle())
	da := f.targetAngle - heading(angle)
	switch {
	case (da > f.tolerance && da < math.Pi) || da < -math.Pi:
		f.turning = counterClockwise
	case (da < -f.tolerance && da > -math.Pi) || da > math.Pi:
		f.turning = clockwise
	default:
		f.turning = straight
	}
}

func (f *Follower) steer(position physics.Vec2, angle float64) car.MoveState {
	if f.Finished() {
		return car.Stopped
	}

	// Drift while driving re-aims at the waypoint instead of passing it wide.
	if f.turning == straight && math.Abs(headingError(f.path[f.target].Sub(position).Angle(), angle)) > f.tolerance {
		f.aim(position, angle)
	}

	if f.turning != straight {
		da := headingError(f.targetAngle, angle)
		switch {
		case math.Abs(da) <= f.tolerance:
			f.turning = straight
		case (da > 0) != (f.turning == counterClockwise):
			// Overshot the band in one step; turn back.
			f.aim(position, angle)
		}
	}

	switch f.turning {
	case counterClockwise:
		return car.RotateLeft
	case clockwise:
		return car.RotateRight
	}
	return car.MoveForward
}

// heading is the direction of the car's forward axis, its local +y.
func heading(angle float64) float64 {
	return normalize(angle + math.Pi/2)
}

// headingError is the signed turn in (-pi, pi] from the car's heading to
// target. Positive is counter clockwise.
func headingError(target, angle float64) float64 {
	da := normalize(target) - heading(angle)
	if da > math.Pi {
		da -= 2 * math.Pi
	} else if da <= -math.Pi {
		da += 2 * math.Pi
	}
	return da
}

// normalize maps angle into [0, 2pi).
func normalize(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}
