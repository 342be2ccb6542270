package components

import (
	"mobirent/internal/infra/readstore"
	"mobirent/internal/infra/repository"
	"mobirent/internal/infra/uow"
	"mobirent/internal/usecase/queries"
	"mobirent/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationStore)),
		),
		fx.Annotate(
			readstore.NewFleetReadStore,
			fx.As(new(queries.FleetStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) repository.DBTX {
	return pool
}
