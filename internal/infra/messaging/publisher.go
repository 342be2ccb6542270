package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"mobirent/internal/pkg/config"
	"mobirent/internal/pkg/errs"
	"mobirent/internal/usecase/commands"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher pushes reservation events onto a durable queue. The connection
// is kept open across publishes and re-dialed lazily after a broker drop.
type Publisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(cfg config.AMQPConfig) (*Publisher, error) {
	p := &Publisher{url: cfg.URL, queue: cfg.Queue}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return errs.Wrap(err, "failed to dial broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errs.Wrap(err, "failed to open channel")
	}

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return errs.Wrap(err, "failed to declare queue")
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) Publish(ctx context.Context, event commands.ReservationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "failed to marshal event")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	publish := func() error {
		return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	}

	if err := publish(); err != nil {
		slog.Warn("publish failed, re-dialing broker", "error", err.Error())
		if err := p.connect(); err != nil {
			return err
		}
		if err := publish(); err != nil {
			return errs.Wrap(err, "failed to publish event")
		}
	}
	return nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
