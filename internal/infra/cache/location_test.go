//go:build unit

package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"space-booking/internal/infra"
	"space-booking/internal/infra/cache"
	"space-booking/internal/usecase/shared"
	"space-booking/tests/common/builder"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	calls atomic.Int32
	snaps map[uuid.UUID]*shared.LocationSnapshot
	delay time.Duration
}

func (s *countingStore) FindByID(_ context.Context, id uuid.UUID) (*shared.LocationSnapshot, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	snap, ok := s.snaps[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "location not found")
	}
	cp := *snap
	return &cp, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events map[string]int
}

func (o *recordingObserver) ObserveCache(_, event string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.events == nil {
		o.events = map[string]int{}
	}
	o.events[event]++
}

func (o *recordingObserver) count(event string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[event]
}

func setup(t *testing.T, snaps ...*shared.LocationSnapshot) (*cache.LocationCache, *countingStore, *recordingObserver, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &countingStore{snaps: map[uuid.UUID]*shared.LocationSnapshot{}}
	for _, s := range snaps {
		store.snaps[s.ID] = s
	}
	obs := &recordingObserver{}
	return cache.NewLocationCache(client, store, time.Minute, obs), store, obs, mr
}

func fixedSnapshot() *shared.LocationSnapshot {
	return builder.NewLocationBuilder().With(func(b *builder.LocationBuilder) {
		b.Now = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	}).BuildSnapshot()
}

func TestLocationCache_ReadThrough(t *testing.T) {
	snap := fixedSnapshot()
	c, store, obs, mr := setup(t, snap)

	first, err := c.FindByID(context.Background(), snap.ID)
	require.NoError(t, err)
	second, err := c.FindByID(context.Background(), snap.ID)
	require.NoError(t, err)

	assert.Equal(t, int32(1), store.calls.Load())
	assert.Equal(t, 1, obs.count("miss"))
	assert.Equal(t, 1, obs.count("hit"))
	assert.True(t, mr.Exists("location:v1:"+snap.ID.String()))
	assert.Equal(t, time.Minute, mr.TTL("location:v1:"+snap.ID.String()))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached snapshot mismatch (-store +cache):\n%s", diff)
	}
	assert.Equal(t, snap.Pricing, second.Pricing)
}

func TestLocationCache_Invalidate(t *testing.T) {
	snap := fixedSnapshot()
	c, store, _, mr := setup(t, snap)

	_, err := c.FindByID(context.Background(), snap.ID)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(context.Background(), snap.ID))
	assert.False(t, mr.Exists("location:v1:"+snap.ID.String()))

	_, err = c.FindByID(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.calls.Load())
}

func TestLocationCache_NotFoundIsNotCached(t *testing.T) {
	c, store, _, mr := setup(t)
	id := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := c.FindByID(context.Background(), id)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	}
	assert.Equal(t, int32(2), store.calls.Load())
	assert.Empty(t, mr.Keys())
}

func TestLocationCache_RedisDownFallsThrough(t *testing.T) {
	snap := fixedSnapshot()
	c, store, obs, mr := setup(t, snap)
	mr.Close()

	got, err := c.FindByID(context.Background(), snap.ID)

	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, int32(1), store.calls.Load())
	assert.GreaterOrEqual(t, obs.count("error"), 1)
}

func TestLocationCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	snap := fixedSnapshot()
	c, store, _, _ := setup(t, snap)
	store.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.FindByID(context.Background(), snap.ID)
			assert.NoError(t, err)
			assert.Equal(t, snap.ID, got.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), store.calls.Load())
}
