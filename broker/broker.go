// Package broker consumes allocator events from an AMQP compliant broker
// (ie RabbitMQ) and applies them to an nftptr session.
package broker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/log"
	"github.com/streadway/amqp"

	"github.com/branched-services/go-nftptr/event"
)

// Defaults for Config.
const (
	DefaultQueue      = "nftptr.events"
	DefaultExchange   = "nftptr"
	DefaultRoutingKey = "event.#"
	DefaultTag        = "nftptr"
)

// ErrDeliveriesClosed is returned by Run when the broker closes the delivery channel.
var ErrDeliveriesClosed = errors.New("broker: delivery channel closed")

// Channel is the part of *amqp.Channel the consumer uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Publisher is the part of *amqp.Channel Publish uses.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Config names the queue and, optionally, the topic exchange it is bound to.
type Config struct {
	Queue      string
	Exchange   string // empty consumes the queue without binding it
	RoutingKey string
	Tag        string
}

// DefaultConfig returns the default queue layout.
func DefaultConfig() Config {
	return Config{
		Queue:      DefaultQueue,
		Exchange:   DefaultExchange,
		RoutingKey: DefaultRoutingKey,
		Tag:        DefaultTag,
	}
}

// Consumer applies deliveries to a Dispatcher one at a time.
type Consumer struct {
	cfg Config
	d   *event.Dispatcher
	log log.Logger
}

// NewConsumer returns a consumer for cfg. A nil logger logs under module=broker.
func NewConsumer(cfg Config, d *event.Dispatcher, logger log.Logger) *Consumer {
	if logger == nil {
		logger = log.New("module", "broker")
	}
	return &Consumer{cfg: cfg, d: d, log: logger}
}

// Dial connects to the broker at uri.
func Dial(uri string) (*amqp.Connection, error) {
	return amqp.Dial(uri)
}

// Setup declares the queue, binds it when an exchange is configured and
// starts consuming with manual acknowledgement.
func (c *Consumer) Setup(ch Channel) (<-chan amqp.Delivery, error) {
	if c.cfg.Exchange != "" {
		if err := ch.ExchangeDeclare(c.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			return nil, err
		}
	}
	if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	if c.cfg.Exchange != "" {
		if err := ch.QueueBind(c.cfg.Queue, c.cfg.RoutingKey, c.cfg.Exchange, false, nil); err != nil {
			return nil, err
		}
	}
	// one unacknowledged event at a time keeps the on-chain order
	if err := ch.Qos(1, 0, false); err != nil {
		return nil, err
	}
	return ch.Consume(c.cfg.Queue, c.cfg.Tag, false, false, false, false, nil)
}

// Run handles deliveries until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	c.log.Info("Consuming events", "queue", c.cfg.Queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			if err := c.Handle(ctx, m); err != nil {
				c.log.Warn("Dropped event", "tag", m.DeliveryTag, "err", err)
			}
		}
	}
}

// Handle applies one delivery. It is acked when the event was applied and
// nacked without requeue otherwise, so a bad event is not redelivered.
func (c *Consumer) Handle(ctx context.Context, m amqp.Delivery) error {
	var ev event.Event
	err := json.Unmarshal(m.Body, &ev)
	if err == nil {
		_, err = c.d.Apply(ctx, &ev)
	}

	if err != nil {
		if nerr := m.Nack(false, false); nerr != nil {
			return errors.Join(err, nerr)
		}
		return err
	}
	c.log.Debug("Applied event", "kind", ev.Kind, "owner", ev.Owner)
	return m.Ack(false)
}

// Publish sends ev to exchange under key, as the tracer side would.
func Publish(p Publisher, exchange, key string, ev *event.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Publish(exchange, key, false, false, amqp.Publishing{
		Headers:      amqp.Table{"x-event-kind": string(ev.Kind)},
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
