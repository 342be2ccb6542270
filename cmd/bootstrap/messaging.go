package bootstrap

import (
	"context"

	"mobirent/internal/infra/mail"
	"mobirent/internal/infra/messaging"
	"mobirent/internal/notifier"
	"mobirent/internal/pkg/config"
	"mobirent/internal/usecase/commands"

	"go.uber.org/fx"
)

var MessagingModule = fx.Module("messaging",
	fx.Provide(
		NewEventPublisher,
		NewMailSender,
		NewNotifierConsumer,
	),
	fx.Invoke(StartNotifier),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) (commands.EventPublisher, error) {
	publisher, err := messaging.NewPublisher(cfg.AMQP)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			publisher.Close()
			return nil
		},
	})

	return publisher, nil
}

func NewMailSender(cfg config.Config) mail.Sender {
	return mail.NewSender(cfg.SMTP)
}

func NewNotifierConsumer(cfg config.Config, sender mail.Sender) *notifier.Consumer {
	return notifier.NewConsumer(cfg.AMQP, sender)
}

func StartNotifier(lc fx.Lifecycle, consumer *notifier.Consumer) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				consumer.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
