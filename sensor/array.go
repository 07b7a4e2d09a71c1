package sensor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/beka-birhanu/vinom-sim/physics"
)

const (
	DefaultInset       = 0.10
	DefaultMaxDistance = 4.0
	noHitValue         = 9999.9
)

var (
	ErrNoAngles        = errors.New("sensor angle set is empty")
	ErrInvalidDistance = errors.New("sensor distance must be positive")
)

// NoHit is the reading point used when nothing is in range.
var NoHit = physics.Vec2{X: noHitValue, Y: noHitValue}

// Raycaster is the part of the physics world the sensors need.
type Raycaster interface {
	RayCast(cb physics.RayCastCallback, p1, p2 physics.Vec2) error
}

// Pose is anything that maps body space points to world space.
type Pose interface {
	GetWorldPoint(local physics.Vec2) physics.Vec2
}

// Reading is the result of one ray for one tick.
type Reading struct {
	Angle    float64      `json:"angle" bson:"angle"`
	Point    physics.Vec2 `json:"point" bson:"point"`
	Hit      bool         `json:"hit" bson:"hit"`
	Distance float64      `json:"distance" bson:"distance"`
	Fraction float64      `json:"fraction" bson:"fraction"`
}

// Config configures an Array. Angles are in degrees from the forward axis.
// A zero Filter selects physics.SensorFilter.
type Config struct {
	Angles      []float64      `yaml:"angles"`
	MaxDistance float64        `yaml:"maxdistance"`
	Inset       float64        `yaml:"inset"`
	Filter      physics.Filter `yaml:"-"`
}

// DefaultConfig is a single forward ray.
func DefaultConfig() Config {
	return Config{
		Angles:      []float64{0},
		MaxDistance: DefaultMaxDistance,
		Inset:       DefaultInset,
		Filter:      physics.SensorFilter,
	}
}

// Array is a fan of range sensors.
type Array struct {
	angles      []float64
	maxDistance float64
	inset       float64
	filter      physics.Filter
}

// New validates cfg and builds an array owning its own copy of the angles.
func New(cfg Config) (*Array, error) {
	if len(cfg.Angles) == 0 {
		return nil, ErrNoAngles
	}
	if cfg.MaxDistance <= 0 || math.IsNaN(cfg.MaxDistance) || math.IsInf(cfg.MaxDistance, 0) {
		return nil, fmt.Errorf("max distance %v: %w", cfg.MaxDistance, ErrInvalidDistance)
	}
	if cfg.Inset < 0 {
		return nil, fmt.Errorf("inset %v: %w", cfg.Inset, ErrInvalidDistance)
	}

	filter := cfg.Filter
	if filter == (physics.Filter{}) {
		filter = physics.SensorFilter
	}

	angles := make([]float64, 0, len(cfg.Angles))
	seen := map[float64]struct{}{}
	for _, a := range cfg.Angles {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		angles = append(angles, a)
	}
	sort.Float64s(angles)

	return &Array{
		angles:      angles,
		maxDistance: cfg.MaxDistance,
		inset:       cfg.Inset,
		filter:      filter,
	}, nil
}

// Angles returns the sorted angle set.
func (a *Array) Angles() []float64 {
	return append([]float64(nil), a.angles...)
}

func (a *Array) MaxDistance() float64 { return a.maxDistance }
func (a *Array) Filter() physics.Filter { return a.filter }

// Ray returns the world space start and end of the ray at angle degrees.
func (a *Array) Ray(pose Pose, angle float64) (physics.Vec2, physics.Vec2) {
	rad := angle / 180 * math.Pi
	start := pose.GetWorldPoint(physics.Vec2{Y: a.inset}.Rotate(rad))
	end := pose.GetWorldPoint(physics.Vec2{Y: a.inset + a.maxDistance}.Rotate(rad))
	return start, end
}

// Sense casts every ray once and returns one reading per angle.
func (a *Array) Sense(pose Pose, caster Raycaster) (map[float64]Reading, error) {
	readings := make(map[float64]Reading, len(a.angles))
	for _, angle := range a.angles {
		start, end := a.Ray(pose, angle)

		var hit Hit
		if err := caster.RayCast(Callback(a.filter, &hit), start, end); err != nil {
			return nil, fmt.Errorf("sensor %v: %w", angle, err)
		}

		if !hit.Valid {
			readings[angle] = Reading{Angle: angle, Point: NoHit, Distance: noHitValue, Fraction: 1}
			continue
		}
		readings[angle] = Reading{
			Angle:    angle,
			Point:    hit.Point,
			Hit:      true,
			Distance: hit.Point.Distance(start),
			Fraction: hit.Fraction,
		}
	}
	return readings, nil
}
