// Package cache keeps location snapshots in redis in front of the read store.
// Admission never reads through it; it only serves quotes and calendars.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheName = "location"

type Observer interface {
	ObserveCache(cache, event string) // event: hit|miss|set|del|error
}

type nopObserver struct{}

func (nopObserver) ObserveCache(string, string) {}

type LocationCache struct {
	client *redis.Client
	next   queries.LocationReadStore
	ttl    time.Duration
	obs    Observer
	group  singleflight.Group
}

var (
	_ queries.LocationReadStore = (*LocationCache)(nil)
	_ shared.LocationCache      = (*LocationCache)(nil)
)

func NewLocationCache(client *redis.Client, next queries.LocationReadStore, ttl time.Duration, obs Observer) *LocationCache {
	if obs == nil {
		obs = nopObserver{}
	}
	return &LocationCache{client: client, next: next, ttl: ttl, obs: obs}
}

func key(id uuid.UUID) string {
	return "location:v1:" + id.String()
}

// FindByID serves from redis when it can. Redis failures fall through to the
// store; a cache must never fail a read the store can answer.
func (c *LocationCache) FindByID(ctx context.Context, id uuid.UUID) (*shared.LocationSnapshot, error) {
	if snap, ok := c.get(ctx, id); ok {
		return snap, nil
	}

	v, err, _ := c.group.Do(id.String(), func() (any, error) {
		snap, err := c.next.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		c.set(ctx, snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers sharing a flight each get their own copy.
	cp := *v.(*shared.LocationSnapshot)
	return &cp, nil
}

func (c *LocationCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	c.obs.ObserveCache(cacheName, "del")
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		c.obs.ObserveCache(cacheName, "error")
		return errs.Wrap(err, "failed to invalidate location cache")
	}
	return nil
}

func (c *LocationCache) get(ctx context.Context, id uuid.UUID) (*shared.LocationSnapshot, bool) {
	b, err := c.client.Get(ctx, key(id)).Bytes()
	if errs.Is(err, redis.Nil) {
		c.obs.ObserveCache(cacheName, "miss")
		return nil, false
	}
	if err != nil {
		c.obs.ObserveCache(cacheName, "error")
		slog.Warn("location cache read failed", "location_id", id.String(), "error", err.Error())
		return nil, false
	}
	var snap shared.LocationSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		c.obs.ObserveCache(cacheName, "error")
		slog.Warn("location cache entry is corrupt", "location_id", id.String(), "error", err.Error())
		return nil, false
	}
	c.obs.ObserveCache(cacheName, "hit")
	return &snap, true
}

func (c *LocationCache) set(ctx context.Context, snap *shared.LocationSnapshot) {
	b, err := json.Marshal(snap)
	if err != nil {
		return
	}
	c.obs.ObserveCache(cacheName, "set")
	if err := c.client.Set(ctx, key(snap.ID), b, c.ttl).Err(); err != nil {
		c.obs.ObserveCache(cacheName, "error")
		slog.Warn("location cache write failed", "location_id", snap.ID.String(), "error", err.Error())
	}
}
