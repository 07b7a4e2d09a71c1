package i

import "context"

// SortedQueue is a score ordered queue of string members shared between processes.
type SortedQueue interface {
	// Enqueue adds member with score to the queue stored under queueKey.
	Enqueue(ctx context.Context, queueKey string, score float64, member string) error

	// DequeTops pops up to amount members with the lowest scores.
	// Nothing is popped while fewer than amount members are queued.
	DequeTops(ctx context.Context, queueKey string, amount int64) ([]string, error)

	// Count returns the number of queued members.
	Count(ctx context.Context, queueKey string) int64
}
