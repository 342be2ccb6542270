package bootstrap

import (
	"mobirent/internal/infra/payment"
	"mobirent/internal/usecase/commands"

	"go.uber.org/fx"
)

var PaymentModule = fx.Module("payment",
	fx.Provide(
		fx.Annotate(
			payment.NewSimulatedGateway,
			fx.As(new(commands.PaymentGateway)),
		),
	),
)
