package bootstrap

import (
	"context"

	"space-booking/internal/pkg/config"
	"space-booking/internal/usecase/commands"
	"space-booking/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(NewSweeper),
	fx.Invoke(startSweeper),
)

func NewSweeper(cfg config.Config, expiry commands.ExpiryCommands) *worker.Sweeper {
	return worker.NewSweeper(expiry, cfg.Booking.SweepInterval)
}

func startSweeper(lc fx.Lifecycle, s *worker.Sweeper) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go s.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			s.Stop()
			return nil
		},
	})
}
