package bootstrap

import (
	"log/slog"

	"space-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(logEffectiveConfig),
)

// logEffectiveConfig records the settings that change admission behavior.
// Credentials are left out.
func logEffectiveConfig(cfg config.Config, logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("store", cfg.Store.Driver),
		slog.Group("booking",
			slog.Duration("pending_ttl", cfg.Booking.PendingTTL),
			slog.Duration("sweep_interval", cfg.Booking.SweepInterval),
			slog.Duration("idempotency_ttl", cfg.Booking.IdempotencyTTL)),
		slog.Group("cache",
			slog.Bool("enabled", cfg.Cache.Enabled),
			slog.Duration("location_ttl", cfg.Cache.LocationTTL)),
		slog.Group("rate_limit",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Float64("rps", cfg.RateLimit.RPS),
			slog.Int("burst", cfg.RateLimit.Burst)),
		slog.Bool("metrics", cfg.Metrics.Enabled),
	)
}
