package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher accepts domain events. Publish must not block: handlers call it
// while holding the store lock.
type Publisher interface {
	Publish(ev Event)
}

// NopPublisher discards every event. It is used when the queue is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// AMQPPublisher buffers events in memory and ships them to a durable
// RabbitMQ queue from a background goroutine started with Run. When the
// buffer is full new events are dropped and logged. An event whose publish
// failed is kept and sent first once the connection is back.
type AMQPPublisher struct {
	url     string
	queue   string
	events  chan Event
	pending *Event // owned by the Run goroutine
	log     zerolog.Logger
}

// publishChannel is the part of *amqp.Channel the publisher uses.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// NewAMQPPublisher creates a publisher for queueName on the broker at url.
func NewAMQPPublisher(url, queueName string, buffer int, log zerolog.Logger) *AMQPPublisher {
	if buffer < 1 {
		buffer = 1
	}
	return &AMQPPublisher{
		url:    url,
		queue:  queueName,
		events: make(chan Event, buffer),
		log:    log.With().Str("component", "event_publisher").Logger(),
	}
}

// Publish enqueues ev without blocking.
func (p *AMQPPublisher) Publish(ev Event) {
	select {
	case p.events <- ev:
	default:
		p.log.Warn().Str("type", string(ev.Type)).Msg("event buffer full, dropping event")
	}
}

// Run connects to the broker and publishes buffered events until ctx is
// cancelled. Connection failures are retried with exponential backoff.
func (p *AMQPPublisher) Run(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			p.log.Error().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = p.publishLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		p.log.Error().Err(err).Msg("publish loop ended, reconnecting")
	}
}

func (p *AMQPPublisher) publishLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	return p.drain(ctx, ch, conn.NotifyClose(make(chan *amqp.Error, 1)))
}

// drain publishes the pending event, if any, and then buffered events until
// ctx is done, the connection closes or a publish fails.
func (p *AMQPPublisher) drain(ctx context.Context, ch publishChannel, closed <-chan *amqp.Error) error {
	for {
		if p.pending != nil {
			if err := p.publish(ctx, ch, *p.pending); err != nil {
				p.log.Error().Err(err).Str("type", string(p.pending.Type)).Msg("failed to publish event, will retry")
				return err
			}
			p.pending = nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case ev := <-p.events:
			p.pending = &ev
		}
	}
}

func (p *AMQPPublisher) publish(ctx context.Context, ch publishChannel, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         string(ev.Type),
			Timestamp:    ev.OccurredAt,
			Body:         body,
		},
	)
}
