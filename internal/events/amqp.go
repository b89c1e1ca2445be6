package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// redialInterval bounds how often Publish tries to reach a broker that is down.
const redialInterval = 5 * time.Second

var (
	ErrBrokerUnavailable = errors.New("rabbitmq unavailable, waiting to redial")
	ErrPublisherClosed   = errors.New("publisher closed")
)

// AMQPPublisher publishes events to a durable topic exchange, routed by
// event type (e.g. "video.reported"). A channel or connection dropped by
// the broker is redialled lazily on the next Publish.
type AMQPPublisher struct {
	url      string
	exchange string
	timeout  time.Duration
	dial     func(url string) (*amqp.Connection, error)
	now      func() time.Time

	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	closes   chan *amqp.Error
	lastDial time.Time
	shut     bool
}

func NewAMQPPublisher(url, exchange string, timeout time.Duration) (*AMQPPublisher, error) {
	p := newAMQPPublisher(url, exchange, timeout, amqp.Dial)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func newAMQPPublisher(url, exchange string, timeout time.Duration, dial func(string) (*amqp.Connection, error)) *AMQPPublisher {
	return &AMQPPublisher{
		url:      url,
		exchange: exchange,
		timeout:  timeout,
		dial:     dial,
		now:      time.Now,
	}
}

// connect dials, opens a channel and declares the exchange. Callers hold mu.
func (p *AMQPPublisher) connect() error {
	p.lastDial = p.now()

	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", p.exchange, err)
	}

	p.conn = conn
	p.channel = ch
	// Closed by the library when the channel or its connection goes away.
	p.closes = ch.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

// ready returns nil when a usable channel is open, redialling at most once
// per redialInterval. Callers hold mu.
func (p *AMQPPublisher) ready() error {
	if p.shut {
		return ErrPublisherClosed
	}
	if p.channel != nil {
		select {
		case reason := <-p.closes:
			slog.Warn("rabbitmq channel closed, redialling", "error", reason)
			p.drop()
		default:
			return nil
		}
	}
	if !p.lastDial.IsZero() && p.now().Sub(p.lastDial) < redialInterval {
		return ErrBrokerUnavailable
	}
	if err := p.connect(); err != nil {
		return err
	}
	slog.Info("rabbitmq reconnected", "exchange", p.exchange)
	return nil
}

// drop releases the current channel and connection. Callers hold mu.
func (p *AMQPPublisher) drop() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	p.channel, p.conn, p.closes = nil, nil, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		event.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    time.UnixMilli(event.Timestamp),
			Body:         body,
		},
	)
	if err != nil {
		if errors.Is(err, amqp.ErrClosed) {
			p.drop()
		}
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	slog.Debug("event published", "type", event.Type, "event_id", event.ID)
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shut = true
	var err error
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		err = p.conn.Close()
	}
	p.channel, p.conn, p.closes = nil, nil, nil
	return err
}
