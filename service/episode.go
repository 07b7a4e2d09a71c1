package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-sim/domain"
	"github.com/beka-birhanu/vinom-sim/service/i"
	"github.com/beka-birhanu/vinom-sim/simulation"
	"github.com/google/uuid"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPrefix       = "episodes"
	defaultWorkers      = 1
	defaultPollInterval = 500 * time.Millisecond
	defaultFrameStride  = 1
	subscriberBuffer    = 64
	queueKeyFmt         = "%s:queue"
	memberSeparator     = "|"
)

var (
	ErrInvalidMember = errors.New("invalid queue member")
)

// EpisodeOptions tunes the episode workers.
type EpisodeOptions struct {
	Prefix       string        // Redis key prefix of the seed queue
	Workers      int           // Number of simulations run in parallel
	PollInterval time.Duration // Delay between polls of an empty queue
	FrameStride  int           // Keep every n-th frame in the stored episode
	FrameBytes   int           // Encoded frame budget per stored episode, capped at domain.MaxFrameBytes
}

// EpisodeService runs queued seeds through the simulation and stores the episodes.
// Each worker owns its simulation; nothing simulated is shared between workers.
type EpisodeService struct {
	cfg         simulation.Config
	sortedQueue i.SortedQueue
	repo        i.EpisodeRepo
	logger      i.Logger
	opts        *EpisodeOptions

	mu          sync.RWMutex
	subscribers map[chan dmn.FrameEvent]struct{}
}

// NewEpisodeService validates cfg and fills unset options with defaults.
func NewEpisodeService(cfg simulation.Config, sortedQueue i.SortedQueue, repo i.EpisodeRepo, logger i.Logger, opts *EpisodeOptions) (*EpisodeService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sortedQueue == nil || repo == nil || logger == nil {
		return nil, errors.New("episode service needs a queue, a repository and a logger")
	}

	if opts == nil {
		opts = &EpisodeOptions{}
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultPrefix
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.FrameStride <= 0 {
		opts.FrameStride = defaultFrameStride
	}

	return &EpisodeService{
		cfg:         cfg,
		sortedQueue: sortedQueue,
		repo:        repo,
		logger:      logger,
		opts:        opts,
		subscribers: make(map[chan dmn.FrameEvent]struct{}),
	}, nil
}

// Enqueue schedules seed. Seeds are served in arrival order.
func (es *EpisodeService) Enqueue(ctx context.Context, seed int64) (uuid.UUID, error) {
	id := uuid.New()
	score := float64(time.Now().UnixNano())
	if err := es.sortedQueue.Enqueue(ctx, es.queueKey(), score, encodeMember(id, seed)); err != nil {
		es.logger.Error(fmt.Sprintf("Failed to enqueue seed %d: %s", seed, err))
		return uuid.Nil, err
	}

	es.logger.Info(fmt.Sprintf("Episode queued: ID=%s Seed=%d", id, seed))
	return id, nil
}

// Episode returns a stored episode.
func (es *EpisodeService) Episode(ctx context.Context, id uuid.UUID) (*dmn.Episode, error) {
	return es.repo.ByID(ctx, id)
}

// Recent lists stored episodes, newest first.
func (es *EpisodeService) Recent(ctx context.Context, limit int64) ([]*dmn.Episode, error) {
	return es.repo.Recent(ctx, limit)
}

// Run starts the workers and blocks until ctx is done or a worker fails.
func (es *EpisodeService) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for w := 0; w < es.opts.Workers; w++ {
		worker := w
		group.Go(func() error {
			return es.work(groupCtx, worker)
		})
	}

	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (es *EpisodeService) work(ctx context.Context, worker int) error {
	es.logger.Info(fmt.Sprintf("Episode worker %d started", worker))
	poll := channerics.NewTicker(ctx.Done(), es.opts.PollInterval)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		members, err := es.sortedQueue.DequeTops(ctx, es.queueKey(), 1)
		if err != nil {
			es.logger.Warning(fmt.Sprintf("Worker %d obtaining queue lock: %s", worker, err))
		}

		if len(members) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-poll:
			}
			continue
		}

		id, seed, err := decodeMember(members[0])
		if err != nil {
			es.logger.Warning(fmt.Sprintf("Dropping queue member %q: %s", members[0], err))
			continue
		}

		if _, err := es.RunEpisode(ctx, id, seed); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			es.logger.Error(fmt.Sprintf("Episode %s failed: %s", id, err))
		}
	}
}

// RunEpisode simulates seed to completion, publishes every frame and saves the episode.
func (es *EpisodeService) RunEpisode(ctx context.Context, id uuid.UUID, seed int64) (*dmn.Episode, error) {
	episode, err := dmn.NewEpisode(dmn.EpisodeConfig{
		ID:         id,
		Seed:       seed,
		Rows:       es.cfg.Maze.Rows,
		Columns:    es.cfg.Maze.Columns,
		FrameBytes: es.opts.FrameBytes,
	})
	if err != nil {
		return nil, err
	}

	sim, err := simulation.New(es.cfg, seed)
	if err != nil {
		return nil, err
	}

	es.logger.Info(fmt.Sprintf("Episode started: ID=%s Seed=%d", id, seed))
	err = sim.Run(ctx, es.cfg.MaxTicks, func(f simulation.Frame) error {
		episode.Record(f, f.Tick%es.opts.FrameStride == 0 || f.Solved)
		es.publish(dmn.FrameEvent{EpisodeID: id, Frame: f})
		return nil
	})
	if err != nil {
		return nil, err
	}
	episode.Finish()
	if episode.Truncated {
		es.logger.Warning(fmt.Sprintf("Episode %s kept %d frames before reaching the frame budget", id, len(episode.Frames)))
	}

	if err := es.repo.Save(ctx, episode); err != nil {
		return nil, err
	}

	es.logger.Info(fmt.Sprintf("Episode finished: ID=%s Ticks=%d Solved=%t", id, episode.Ticks, episode.Solved))
	return episode, nil
}

// Subscribe returns a channel receiving the frames of every running episode.
// Frames are dropped for subscribers that fall behind. The channel is closed
// once done is closed.
func (es *EpisodeService) Subscribe(done <-chan struct{}) <-chan dmn.FrameEvent {
	ch := make(chan dmn.FrameEvent, subscriberBuffer)

	es.mu.Lock()
	es.subscribers[ch] = struct{}{}
	es.mu.Unlock()

	go func() {
		<-done
		es.mu.Lock()
		delete(es.subscribers, ch)
		close(ch)
		es.mu.Unlock()
	}()
	return ch
}

func (es *EpisodeService) publish(event dmn.FrameEvent) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	for ch := range es.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (es *EpisodeService) queueKey() string {
	return fmt.Sprintf(queueKeyFmt, es.opts.Prefix)
}

func encodeMember(id uuid.UUID, seed int64) string {
	return id.String() + memberSeparator + strconv.FormatInt(seed, 10)
}

func decodeMember(member string) (uuid.UUID, int64, error) {
	rawID, rawSeed, ok := strings.Cut(member, memberSeparator)
	if !ok {
		return uuid.Nil, 0, ErrInvalidMember
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("%w: %s", ErrInvalidMember, err)
	}
	seed, err := strconv.ParseInt(rawSeed, 10, 64)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("%w: %s", ErrInvalidMember, err)
	}
	return id, seed, nil
}
