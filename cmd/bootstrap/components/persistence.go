package components

import (
	"context"
	"log/slog"

	"space-booking/internal/infra/db"
	"space-booking/internal/infra/memstore"
	"space-booking/internal/infra/query"
	"space-booking/internal/infra/readstore"
	"space-booking/internal/infra/uow"
	"space-booking/internal/pkg/config"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// PersistenceModule selects the store named by STORE_DRIVER.
var PersistenceModule = fx.Module("persistence",
	fx.Provide(NewPersistence),
)

type PersistenceParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	// Pool is supplied by tests that own their database; otherwise one is opened here.
	Pool *pgxpool.Pool `optional:"true"`
}

type Persistence struct {
	fx.Out

	UoW          shared.UnitOfWork
	Locations    queries.LocationReadStore `name:"locationStore"`
	Reservations queries.ReservationReadStore
}

func NewPersistence(p PersistenceParams) (Persistence, error) {
	if p.Config.Store.Driver == config.StoreMemory {
		slog.Info("using in-memory store")
		s := memstore.New()
		return Persistence{
			UoW:          memstore.NewUoW(s),
			Locations:    memstore.NewLocationReadStore(s),
			Reservations: memstore.NewReservationReadStore(s),
		}, nil
	}

	pool := p.Pool
	if pool == nil {
		opened, cleanup, err := db.Connect(p.Config.DB)
		if err != nil {
			return Persistence{}, err
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				if cleanup != nil {
					cleanup()
				}
				return nil
			},
		})
		pool = opened
	}

	q := query.New()
	return Persistence{
		UoW:          uow.NewPostgresUoW(pool, q),
		Locations:    readstore.NewLocationReadStore(q, pool),
		Reservations: readstore.NewReservationReadStore(q, pool),
	}, nil
}
