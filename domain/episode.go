package domain

import (
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-sim/maze"
	"github.com/beka-birhanu/vinom-sim/simulation"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// MaxFrameBytes bounds the encoded frames kept in one episode so the stored
// document stays under MongoDB's 16 MiB limit.
const MaxFrameBytes = 12 << 20

var (
	ErrInvalidEpisode  = errors.New("invalid episode")
	ErrEpisodeNotFound = errors.New("episode not found")
)

// Episode is one recorded simulation run, stored as BSON.
type Episode struct {
	ID         uuid.UUID          `json:"id" bson:"_id"`
	Seed       int64              `json:"seed" bson:"seed"`
	Rows       int                `json:"rows" bson:"rows"`
	Columns    int                `json:"columns" bson:"columns"`
	Ticks      int                `json:"ticks" bson:"ticks"`
	Collisions int                `json:"collisions" bson:"collisions"`
	Solved     bool               `json:"solved" bson:"solved"`
	Truncated  bool               `json:"truncated" bson:"truncated"`
	Frames     []simulation.Frame `json:"frames,omitempty" bson:"frames"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	FinishedAt time.Time          `json:"finishedAt" bson:"finishedAt"`

	frameBytes int
	frameLimit int
}

// EpisodeConfig holds the parameters an episode is created from.
// FrameBytes overrides MaxFrameBytes when positive and smaller.
type EpisodeConfig struct {
	ID         uuid.UUID
	Seed       int64
	Rows       int
	Columns    int
	FrameBytes int
}

// NewEpisode creates an empty episode.
func NewEpisode(config EpisodeConfig) (*Episode, error) {
	if config.ID == uuid.Nil {
		return nil, errors.Join(ErrInvalidEpisode, errors.New("missing id"))
	}
	if config.Rows <= 0 || config.Columns <= 0 {
		return nil, errors.Join(ErrInvalidEpisode, errors.New("maze must have at least one cell"))
	}

	return &Episode{
		ID:         config.ID,
		Seed:       config.Seed,
		Rows:       config.Rows,
		Columns:    config.Columns,
		CreatedAt:  time.Now().UTC(),
		frameLimit: frameLimit(config.FrameBytes),
	}, nil
}

// Record updates the summary from f. When keep is set the frame is stored
// too, unless the kept frames would outgrow MaxFrameBytes; the episode is
// then marked truncated and later frames only update the summary.
func (e *Episode) Record(f simulation.Frame, keep bool) {
	e.Ticks = f.Tick
	e.Solved = e.Solved || f.Solved
	if f.State.Collision {
		e.Collisions++
	}
	if !keep || e.Truncated {
		return
	}

	raw, err := bson.Marshal(f)
	if err != nil || e.frameBytes+len(raw) > frameLimit(e.frameLimit) {
		e.Truncated = true
		return
	}
	e.frameBytes += len(raw)
	e.Frames = append(e.Frames, f)
}

func frameLimit(n int) int {
	if n <= 0 || n > MaxFrameBytes {
		return MaxFrameBytes
	}
	return n
}

// Finish stamps the end time.
func (e *Episode) Finish() {
	e.FinishedAt = time.Now().UTC()
}

// FrameEvent is a frame tagged with the episode that produced it.
type FrameEvent struct {
	EpisodeID uuid.UUID        `json:"episodeId"`
	Frame     simulation.Frame `json:"frame"`
}

// MazeDescription is everything a client needs to draw and check a maze.
type MazeDescription struct {
	Seed       int64             `json:"seed"`
	Rows       int               `json:"rows"`
	Columns    int               `json:"columns"`
	Cells      [][]maze.Cell     `json:"cells"`
	Rectangles []maze.Rectangle  `json:"rectangles"`
	Start      maze.Point        `json:"start"`
	End        maze.Point        `json:"end"`
	Solution   []maze.Coordinate `json:"solution"`
	Text       string            `json:"text"`
}
