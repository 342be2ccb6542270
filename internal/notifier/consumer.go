package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"mobirent/internal/infra/mail"
	"mobirent/internal/pkg/config"
	"mobirent/internal/pkg/errs"
	"mobirent/internal/usecase/commands"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer drains the reservation event queue and turns each event into a
// voucher or cancellation mail. It owns its own connection and reconnects
// with capped backoff, so a broker restart never takes the server down.
type Consumer struct {
	cfg    config.AMQPConfig
	sender mail.Sender
}

func NewConsumer(cfg config.AMQPConfig, sender mail.Sender) *Consumer {
	return &Consumer{cfg: cfg, sender: sender}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(c.cfg.URL)
		if err != nil {
			slog.Warn("notifier dial failed", "error", err.Error(), "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := c.consumeLoop(ctx, conn); err != nil {
			slog.Warn("notifier consume loop ended", "error", err.Error())
		}
		_ = conn.Close()
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errs.Wrap(err, "failed to open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		slog.Warn("notifier set QoS failed", "error", err.Error())
	}

	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return errs.Wrap(err, "failed to declare queue")
	}

	msgs, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return errs.Wrap(err, "failed to start consuming")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errs.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				slog.Error("notifier failed to handle event", "error", err.Error())
				// reject without requeue to avoid a tight redelivery loop
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var event commands.ReservationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return errs.Wrap(err, "failed to unmarshal event")
	}

	subject, htmlBody, err := render(event)
	if err != nil {
		return err
	}

	if err := c.sender.Send(ctx, event.UserEmail, subject, htmlBody); err != nil {
		return err
	}

	slog.Info("notification mail sent",
		"kind", event.Kind,
		"reservation", event.Number,
		"to", event.UserEmail)
	return nil
}
