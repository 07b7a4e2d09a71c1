package service

import (
	"fmt"
	"math/rand"

	dmn "github.com/beka-birhanu/vinom-sim/domain"
	"github.com/beka-birhanu/vinom-sim/maze"
)

const maxMazeCells = 64 * 64

// MazeService describes generated mazes to API clients.
type MazeService struct {
	cfg maze.Config
}

// NewMazeService uses cfg for placement; rows and columns are set per request.
func NewMazeService(cfg maze.Config) (*MazeService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MazeService{cfg: cfg}, nil
}

// Describe generates the maze for seed and solves it from start to end.
func (ms *MazeService) Describe(rows, columns int, seed int64) (*dmn.MazeDescription, error) {
	if rows*columns > maxMazeCells {
		return nil, fmt.Errorf("%w: at most %d cells", maze.ErrInvalidConfig, maxMazeCells)
	}

	cfg := ms.cfg
	cfg.Rows, cfg.Columns = rows, columns
	m, err := maze.New(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	solution, err := m.Solve(m.StartCoordinate(), m.EndCoordinate())
	if err != nil {
		return nil, err
	}

	return &dmn.MazeDescription{
		Seed:       seed,
		Rows:       rows,
		Columns:    columns,
		Cells:      m.Grid().Cells(),
		Rectangles: m.Rectangles(),
		Start:      m.Start(),
		End:        m.End(),
		Solution:   solution,
		Text:       m.String(),
	}, nil
}
