package mq

import (
	"context"
	"fmt"
	"sync"

	"gameforum/settings"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Broker publishes to a durable topic exchange and consumes the bound
// queue. A Channel is not safe for concurrent publishing, hence mu.
type Broker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	queue    string
	mu       sync.Mutex
}

// Dial connects and declares the exchange, the queue and a binding for
// every thread event.
func Dial(cfg *settings.RabbitMQConfig) (*Broker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rabbitmq config is nil")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}

	b := &Broker{conn: conn, ch: ch, exchange: cfg.Exchange, queue: cfg.Queue}
	if err = b.declare(); err != nil {
		_ = b.Close()
		return nil, err
	}
	zap.L().Info("init rabbitmq success",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue),
	)
	return b, nil
}

func (b *Broker) declare() error {
	if err := b.ch.ExchangeDeclare(b.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s failed: %w", b.exchange, err)
	}
	if _, err := b.ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s failed: %w", b.queue, err)
	}
	if err := b.ch.QueueBind(b.queue, "thread.*", b.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s failed: %w", b.queue, err)
	}
	return nil
}

func (b *Broker) Publish(ctx context.Context, e Event) error {
	body, err := encode(e)
	if err != nil {
		return err
	}

	b.mu.Lock()
	err = b.ch.PublishWithContext(ctx, b.exchange, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.At,
		Body:         body,
	})
	b.mu.Unlock()

	observe(e.Type, err)
	if err != nil {
		return fmt.Errorf("publish %s failed: %w", e.Type, err)
	}
	return nil
}

// Consume runs h for every delivery until ctx ends or the channel closes.
// It uses its own channel so consuming never blocks publishing.
func (b *Broker) Consume(ctx context.Context, h Handler) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel failed: %w", err)
	}
	defer ch.Close()

	if err = ch.Qos(16, 0, false); err != nil {
		return fmt.Errorf("set consumer qos failed: %w", err)
	}
	deliveries, err := ch.Consume(b.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s failed: %w", b.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel of %s closed", b.queue)
			}
			settle(d, dispatch(ctx, d.Body, h))
		}
	}
}

// Acknowledger is the part of amqp.Delivery settle needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// settle acks handled deliveries and drops failed ones without requeue,
// so one poison message cannot loop forever.
func settle(d Acknowledger, err error) {
	if err == nil {
		_ = d.Ack(false)
		return
	}
	zap.L().Warn("event handling failed", zap.Error(err))
	_ = d.Nack(false, false)
}

func dispatch(ctx context.Context, body []byte, h Handler) error {
	e, err := decode(body)
	if err != nil {
		return err
	}
	return h(ctx, e)
}

func (b *Broker) Close() error {
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
