// Package simapi exposes mazes, episodes and the live frame stream over HTTP.
package simapi

import "github.com/google/uuid"

// MazeRequest selects the maze to describe.
type MazeRequest struct {
	Rows    int   `form:"rows" binding:"required,min=1,max=64"`
	Columns int   `form:"columns" binding:"required,min=1,max=64"`
	Seed    int64 `form:"seed"`
}

// EpisodeRequest queues an episode. Seed is a pointer so zero is accepted.
type EpisodeRequest struct {
	Seed *int64 `json:"seed" binding:"required"`
}

// EpisodeQueuedResponse is returned once the seed is queued.
type EpisodeQueuedResponse struct {
	ID   uuid.UUID `json:"id"`
	Seed int64     `json:"seed"`
}

// RecentRequest bounds the episode listing.
type RecentRequest struct {
	Limit int64 `form:"limit,default=20" binding:"min=1,max=100"`
}

// StreamRequest optionally narrows the stream to one episode.
type StreamRequest struct {
	Episode string `form:"episode" binding:"omitempty,uuid"`
}
