package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-sim/domain"
	"github.com/google/uuid"
)

// EpisodeProducer queues simulation episodes and exposes their results.
type EpisodeProducer interface {
	// Enqueue schedules an episode for seed and returns its ID.
	Enqueue(ctx context.Context, seed int64) (uuid.UUID, error)

	// Episode returns a finished episode.
	Episode(ctx context.Context, id uuid.UUID) (*dmn.Episode, error)

	// Recent lists the latest finished episodes.
	Recent(ctx context.Context, limit int64) ([]*dmn.Episode, error)

	// Subscribe streams frames of every running episode until done is closed.
	Subscribe(done <-chan struct{}) <-chan dmn.FrameEvent
}

// MazeDescriber builds maze descriptions for clients.
type MazeDescriber interface {
	Describe(rows, columns int, seed int64) (*dmn.MazeDescription, error)
}
