package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-sim/domain"
	"github.com/beka-birhanu/vinom-sim/maze"
	"github.com/beka-birhanu/vinom-sim/simulation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memQueue struct {
	mu      sync.Mutex
	members map[string][]scored
}

type scored struct {
	score  float64
	member string
}

func newMemQueue() *memQueue {
	return &memQueue{members: map[string][]scored{}}
}

func (q *memQueue) Enqueue(_ context.Context, key string, score float64, member string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.members[key] = append(q.members[key], scored{score, member})
	sort.SliceStable(q.members[key], func(a, b int) bool { return q.members[key][a].score < q.members[key][b].score })
	return nil
}

func (q *memQueue) DequeTops(_ context.Context, key string, amount int64) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if int64(len(q.members[key])) < amount {
		return nil, nil
	}
	var out []string
	for _, s := range q.members[key][:amount] {
		out = append(out, s.member)
	}
	q.members[key] = q.members[key][amount:]
	return out, nil
}

func (q *memQueue) Count(_ context.Context, key string) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.members[key]))
}

type memRepo struct {
	mu       sync.Mutex
	episodes map[uuid.UUID]*dmn.Episode
}

func newMemRepo() *memRepo {
	return &memRepo{episodes: map[uuid.UUID]*dmn.Episode{}}
}

func (r *memRepo) Save(_ context.Context, e *dmn.Episode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.episodes[e.ID] = e
	return nil
}

func (r *memRepo) ByID(_ context.Context, id uuid.UUID) (*dmn.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.episodes[id]; ok {
		return e, nil
	}
	return nil, dmn.ErrEpisodeNotFound
}

func (r *memRepo) Recent(_ context.Context, limit int64) ([]*dmn.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dmn.Episode
	for _, e := range r.episodes {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.episodes)
}

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string) {}

type fakeTokenizer struct{}

func (fakeTokenizer) Generate(claims map[string]interface{}, _ time.Duration) (string, error) {
	return "token:" + claims["scope"].(string), nil
}

func (fakeTokenizer) Decode(string) (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

func shortConfig() simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.MaxTicks = 30
	return cfg
}

func TestNewEpisodeService(t *testing.T) {
	t.Run("Fills defaults", func(t *testing.T) {
		es, err := NewEpisodeService(shortConfig(), newMemQueue(), newMemRepo(), nopLogger{}, nil)
		require.NoError(t, err)
		assert.Equal(t, defaultPrefix, es.opts.Prefix)
		assert.Equal(t, defaultWorkers, es.opts.Workers)
		assert.Equal(t, defaultPollInterval, es.opts.PollInterval)
		assert.Equal(t, "episodes:queue", es.queueKey())
	})

	t.Run("Rejects missing dependencies", func(t *testing.T) {
		_, err := NewEpisodeService(shortConfig(), nil, newMemRepo(), nopLogger{}, nil)
		assert.Error(t, err)
	})

	t.Run("Rejects invalid simulation config", func(t *testing.T) {
		cfg := shortConfig()
		cfg.TimeStep = -1
		_, err := NewEpisodeService(cfg, newMemQueue(), newMemRepo(), nopLogger{}, nil)
		assert.ErrorIs(t, err, simulation.ErrInvalidConfig)
	})
}

func TestEnqueue(t *testing.T) {
	queue := newMemQueue()
	es, err := NewEpisodeService(shortConfig(), queue, newMemRepo(), nopLogger{}, &EpisodeOptions{Prefix: "test"})
	require.NoError(t, err)

	first, err := es.Enqueue(context.Background(), 5)
	require.NoError(t, err)
	second, err := es.Enqueue(context.Background(), -3)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, int64(2), queue.Count(context.Background(), "test:queue"))

	members, err := queue.DequeTops(context.Background(), "test:queue", 2)
	require.NoError(t, err)
	id, seed, err := decodeMember(members[0])
	require.NoError(t, err)
	assert.Equal(t, first, id)
	assert.Equal(t, int64(5), seed)
	_, seed, err = decodeMember(members[1])
	require.NoError(t, err)
	assert.Equal(t, int64(-3), seed)
}

func TestDecodeMember(t *testing.T) {
	for _, member := range []string{"", "no-separator", "not-a-uuid|4", uuid.NewString() + "|x"} {
		_, _, err := decodeMember(member)
		assert.ErrorIs(t, err, ErrInvalidMember, member)
	}
}

// assertReadings checks a four sensor frame carries one reading per angle in
// ascending angle order, matching its distances on hits, and a one-hot label.
func assertReadings(t *testing.T, f simulation.Frame) {
	t.Helper()
	require.Len(t, f.Readings, 4)
	require.Len(t, f.Distances, 4)
	for i, angle := range []float64{-90, 0, 90, 180} {
		assert.Equal(t, angle, f.Readings[i].Angle)
		if f.Readings[i].Hit {
			assert.Equal(t, f.Distances[i], f.Readings[i].Distance)
		}
	}

	require.Len(t, f.Label, 5)
	hot := 0
	for _, v := range f.Label {
		hot += v
	}
	assert.Equal(t, 1, hot)
}

func TestRunEpisode(t *testing.T) {
	t.Run("Records frames and saves the episode", func(t *testing.T) {
		repo := newMemRepo()
		cfg := shortConfig()
		cfg.Car.Sensor.Angles = []float64{0, 90, -90, 180}
		es, err := NewEpisodeService(cfg, newMemQueue(), repo, nopLogger{}, &EpisodeOptions{FrameStride: 10})
		require.NoError(t, err)

		done := make(chan struct{})
		frames := es.Subscribe(done)

		id := uuid.New()
		episode, err := es.RunEpisode(context.Background(), id, 8)
		require.NoError(t, err)
		close(done)

		assert.Equal(t, 30, episode.Ticks)
		assert.Len(t, episode.Frames, 3)
		assert.False(t, episode.Truncated)
		assert.False(t, episode.FinishedAt.IsZero())
		for _, f := range episode.Frames {
			assertReadings(t, f)
		}

		stored, err := es.Episode(context.Background(), id)
		require.NoError(t, err)
		assert.Same(t, episode, stored)

		var received []dmn.FrameEvent
		for event := range frames {
			received = append(received, event)
		}
		require.Len(t, received, 30)
		assert.Equal(t, id, received[0].EpisodeID)
		assert.Equal(t, 1, received[0].Frame.Tick)
		for _, event := range received {
			assertReadings(t, event.Frame)
		}
	})

	t.Run("Frame budget truncates the stored frames", func(t *testing.T) {
		es, err := NewEpisodeService(shortConfig(), newMemQueue(), newMemRepo(), nopLogger{}, &EpisodeOptions{FrameBytes: 1})
		require.NoError(t, err)

		episode, err := es.RunEpisode(context.Background(), uuid.New(), 8)
		require.NoError(t, err)
		assert.Equal(t, 30, episode.Ticks)
		assert.True(t, episode.Truncated)
		assert.Empty(t, episode.Frames)
	})

	t.Run("Single cell maze keeps the solving frame", func(t *testing.T) {
		cfg := shortConfig()
		cfg.Maze.Rows, cfg.Maze.Columns = 1, 1
		es, err := NewEpisodeService(cfg, newMemQueue(), newMemRepo(), nopLogger{}, &EpisodeOptions{FrameStride: 10})
		require.NoError(t, err)

		episode, err := es.RunEpisode(context.Background(), uuid.New(), 1)
		require.NoError(t, err)
		assert.True(t, episode.Solved)
		assert.Equal(t, 1, episode.Ticks)
		assert.Len(t, episode.Frames, 1)
	})

	t.Run("Same seed same episode", func(t *testing.T) {
		es, err := NewEpisodeService(shortConfig(), newMemQueue(), newMemRepo(), nopLogger{}, nil)
		require.NoError(t, err)

		a, err := es.RunEpisode(context.Background(), uuid.New(), 21)
		require.NoError(t, err)
		b, err := es.RunEpisode(context.Background(), uuid.New(), 21)
		require.NoError(t, err)
		assert.Equal(t, a.Frames, b.Frames)
	})
}

func TestRun(t *testing.T) {
	queue := newMemQueue()
	repo := newMemRepo()
	es, err := NewEpisodeService(shortConfig(), queue, repo, nopLogger{}, &EpisodeOptions{
		Workers:      2,
		PollInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- es.Run(ctx) }()

	var ids []uuid.UUID
	for _, seed := range []int64{1, 2, 3} {
		id, err := es.Enqueue(ctx, seed)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, queue.Enqueue(ctx, es.queueKey(), 0, "garbage"))

	assert.Eventually(t, func() bool { return repo.len() == 3 }, 10*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop")
	}

	for _, id := range ids {
		_, err := repo.ByID(context.Background(), id)
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(0), queue.Count(context.Background(), es.queueKey()))

	recent, err := es.Recent(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestMazeService(t *testing.T) {
	ms, err := NewMazeService(simulation.DefaultConfig().Maze)
	require.NoError(t, err)

	t.Run("Describes and solves the maze", func(t *testing.T) {
		d, err := ms.Describe(4, 6, 99)
		require.NoError(t, err)
		assert.Equal(t, 4, d.Rows)
		assert.Len(t, d.Cells, 4)
		assert.Len(t, d.Cells[0], 6)
		assert.NotEmpty(t, d.Rectangles)
		assert.NotEmpty(t, d.Text)

		require.NotEmpty(t, d.Solution)
		assert.Equal(t, maze.Coordinate{X: 5, Y: 3}, d.Solution[0])
		assert.Equal(t, maze.Coordinate{}, d.Solution[len(d.Solution)-1])
	})

	t.Run("Is deterministic per seed", func(t *testing.T) {
		a, err := ms.Describe(5, 5, 3)
		require.NoError(t, err)
		b, err := ms.Describe(5, 5, 3)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("Rejects bad sizes", func(t *testing.T) {
		_, err := ms.Describe(0, 5, 1)
		assert.ErrorIs(t, err, maze.ErrInvalidConfig)
		_, err = ms.Describe(100, 100, 1)
		assert.ErrorIs(t, err, maze.ErrInvalidConfig)
	})
}

func TestAuth(t *testing.T) {
	_, err := NewAuthService("", fakeTokenizer{})
	assert.Error(t, err)

	auth, err := NewAuthService("secret", fakeTokenizer{})
	require.NoError(t, err)

	token, err := auth.Issue("secret")
	require.NoError(t, err)
	assert.Equal(t, "token:episodes", token)

	_, err = auth.Issue("guess")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}
