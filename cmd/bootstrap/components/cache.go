package components

import (
	"context"
	"log/slog"

	"space-booking/internal/infra/cache"
	"space-booking/internal/pkg/config"
	"space-booking/internal/pkg/metrics"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// CacheModule puts the redis location cache in front of the location store when enabled.
var CacheModule = fx.Module("cache",
	fx.Provide(NewLocationReads),
)

type LocationReadsParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Store     queries.LocationReadStore `name:"locationStore"`
	Metrics   *metrics.Metrics
}

type LocationReads struct {
	fx.Out

	Reads queries.LocationReadStore
	Cache shared.LocationCache
}

func NewLocationReads(p LocationReadsParams) LocationReads {
	if !p.Config.Cache.Enabled {
		return LocationReads{Reads: p.Store, Cache: shared.NopLocationCache{}}
	}

	client := redis.NewClient(&redis.Options{
		Addr: p.Config.Cache.RedisAddr,
		DB:   p.Config.Cache.RedisDB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// An unreachable redis degrades to store reads; it does not block startup.
			if err := client.Ping(ctx).Err(); err != nil {
				slog.Warn("location cache unreachable", "addr", p.Config.Cache.RedisAddr, "error", err.Error())
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	c := cache.NewLocationCache(client, p.Store, p.Config.Cache.LocationTTL, p.Metrics)
	return LocationReads{Reads: c, Cache: c}
}
