package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-sim/domain"
	"github.com/google/uuid"
)

// EpisodeRepo defines the interface for episode persistence operations.
type EpisodeRepo interface {
	// Save inserts or replaces an episode in the repository.
	Save(ctx context.Context, episode *dmn.Episode) error

	// ByID retrieves an episode by its unique ID.
	// Returns dmn.ErrEpisodeNotFound when no episode has that ID.
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Episode, error)

	// Recent returns up to limit episodes, newest first, without their frames.
	Recent(ctx context.Context, limit int64) ([]*dmn.Episode, error)
}
