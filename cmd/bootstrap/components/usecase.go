package components

import (
	"mobirent/internal/domain/reservation"
	"mobirent/internal/pkg/clock"
	"mobirent/internal/pkg/config"
	"mobirent/internal/usecase/commands"
	"mobirent/internal/usecase/queries"
	"mobirent/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		queries.NewReservationQueries,
		queries.NewFleetQueries,
		commands.NewAuthCommands,
		commands.NewTokenValidator,
		NewReservationCommands,
	),
)

func NewReservationCommands(
	uow shared.UnitOfWork,
	gateway commands.PaymentGateway,
	publisher commands.EventPublisher,
	resQueries queries.ReservationQueries,
	clk clock.Clock,
	cfg config.Config,
) commands.ReservationCommands {
	policy := reservation.RefundPolicy{
		FullDays:    cfg.Refund.FullDays,
		PartialDays: cfg.Refund.PartialDays,
		PartialRate: cfg.Refund.PartialRate,
	}
	return commands.NewReservationCommands(uow, gateway, publisher, resQueries, clk, cfg.Payment.Window, policy)
}
