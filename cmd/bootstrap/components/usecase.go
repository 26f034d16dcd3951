package components

import (
	"space-booking/internal/domain/reservation"
	"space-booking/internal/pkg/clock"
	"space-booking/internal/pkg/config"
	"space-booking/internal/pkg/metrics"
	"space-booking/internal/usecase/commands"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	metrics.New,
	func(m *metrics.Metrics) shared.Metrics { return m },
	func(clk clock.Clock, cfg config.Config) *reservation.Factory {
		return reservation.NewFactory(clk, cfg.Booking.PendingTTL)
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(
			uow shared.UnitOfWork,
			factory *reservation.Factory,
			rq queries.ReservationQueries,
			clk clock.Clock,
			m shared.Metrics,
			cfg config.Config,
		) commands.AdmissionCommands {
			return commands.NewAdmissionUseCase(uow, factory, rq, clk, m, cfg.Booking.IdempotencyTTL)
		},
		commands.NewReservationUseCase,
		commands.NewLocationUseCase,
		commands.NewExpiryUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewLocationQueries,
		queries.NewReservationQueries,
	),
)
