package simulation

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-sim/car"
	"github.com/beka-birhanu/vinom-sim/follower"
	"github.com/beka-birhanu/vinom-sim/maze"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

// Controller selects what drives the car between ticks.
type Controller string

const (
	// ControllerExplore leaves the car to moves set from outside, spinning in
	// place while none is set.
	ControllerExplore Controller = "explore"
	// ControllerFollow drives the car along the maze solution.
	ControllerFollow Controller = "follow"
)

// MaxTicksLimit bounds a single episode.
const MaxTicksLimit = 36000

// Config is everything needed to build one simulation.
// Keys are lower case because viper folds them.
type Config struct {
	Maze             maze.Config `yaml:"maze"`
	Car              car.Config  `yaml:"car"`
	TimeStep         float64     `yaml:"timestep"`
	MaxTicks         int         `yaml:"maxticks"`
	ResetOnCollision bool        `yaml:"resetoncollision"`
	StopWhenSolved   bool        `yaml:"stopwhensolved"`
	Controller       Controller  `yaml:"controller"`
	Tolerance        float64     `yaml:"tolerance"`
}

// DefaultConfig is a 5x5 maze of 3x3 units run at 60 ticks per second.
func DefaultConfig() Config {
	return Config{
		Maze: maze.Config{
			Rows:      5,
			Columns:   5,
			X:         0.5,
			Y:         0.5,
			Width:     3,
			Height:    3,
			Thickness: 0.05,
		},
		Car:            car.DefaultConfig(),
		TimeStep:       1.0 / 60,
		MaxTicks:       3600,
		StopWhenSolved: true,
		Controller:     ControllerFollow,
		Tolerance:      follower.DefaultTolerance,
	}
}

// Validate checks every nested section.
func (c Config) Validate() error {
	if c.TimeStep <= 0 {
		return fmt.Errorf("%w: time step %v", ErrInvalidConfig, c.TimeStep)
	}
	if c.MaxTicks <= 0 || c.MaxTicks > MaxTicksLimit {
		return fmt.Errorf("%w: max ticks %d not in 1..%d", ErrInvalidConfig, c.MaxTicks, MaxTicksLimit)
	}
	switch c.Controller {
	case ControllerExplore, ControllerFollow:
	default:
		return fmt.Errorf("%w: controller %q", ErrInvalidConfig, c.Controller)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance %v", ErrInvalidConfig, c.Tolerance)
	}
	if err := c.Maze.Validate(); err != nil {
		return err
	}
	return c.Car.Validate()
}

// FromYaml reads a config file on top of DefaultConfig. Keys missing from the
// file keep their default values.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")

	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, err
	}

	var raw []byte
	if raw, err = yaml.Marshal(vp.AllSettings()); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err = yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
