package components

import (
	"space-booking/internal/handler"
	"space-booking/internal/handler/api"
	"space-booking/internal/handler/middleware"
	"space-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewLocationHandler,
		api.NewReservationHandler,
		func(cfg config.Config) *middleware.RateLimiter {
			return middleware.NewRateLimiter(cfg.RateLimit)
		},
	),
	fx.Invoke(handler.NewRouter),
)
