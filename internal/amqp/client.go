// Package amqp publishes record-created events to RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"pft/internal/core"
	"pft/internal/log"
)

const (
	publishTimeout   = 5 * time.Second
	maxPublishTries  = 3
	maxBackoff       = 30 * time.Second
	exchangeKindName = "topic"
)

// channel is the part of *amqp091.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// connectFunc opens a connection and a channel with the exchange declared.
type connectFunc func() (channel, io.Closer, error)

// Publisher sends RecordMessages to a topic exchange. It reconnects after
// connection errors.
type Publisher struct {
	exchange   string
	routingKey string
	connect    connectFunc
	logger     *log.Logger
	sleep      func(context.Context, time.Duration) error

	mu   sync.Mutex
	ch   channel
	conn io.Closer
}

// NewPublisher dials url and declares exchange as a durable topic exchange.
func NewPublisher(url, exchange, routingKey string, logger *log.Logger) (*Publisher, error) {
	connect := func() (channel, io.Closer, error) {
		conn, err := amqp091.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("dial AMQP: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open channel: %w", err)
		}
		err = ch.ExchangeDeclare(
			exchange,         // name
			exchangeKindName, // type
			true,             // durable
			false,            // auto-deleted
			false,            // internal
			false,            // no-wait
			nil,              // arguments
		)
		if err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("declare exchange: %w", err)
		}
		return ch, conn, nil
	}
	return newPublisher(exchange, routingKey, connect, logger)
}

func newPublisher(exchange, routingKey string, connect connectFunc, logger *log.Logger) (*Publisher, error) {
	p := &Publisher{
		exchange:   exchange,
		routingKey: routingKey,
		connect:    connect,
		logger:     logger.WithComponent(log.ComponentAMQP),
		sleep:      sleepContext,
	}
	ch, conn, err := connect()
	if err != nil {
		return nil, err
	}
	p.ch, p.conn = ch, conn
	return p, nil
}

// PublishRecordCreated publishes ev with the configured routing key.
func (p *Publisher) PublishRecordCreated(ctx context.Context, ev core.RecordCreated) error {
	body, err := NewRecordMessage(ev).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxPublishTries; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, exponentialBackoff(attempt-1)); err != nil {
				return err
			}
			if err := p.reconnect(); err != nil {
				lastErr = err
				continue
			}
		}
		lastErr = p.publish(ctx, body)
		if lastErr == nil {
			p.logger.DebugContext(ctx, "Published record event",
				log.FieldOperation, log.OpPublish, "kind", string(ev.Kind), "exchange", p.exchange)
			return nil
		}
		if !isConnectionError(lastErr) {
			break
		}
		p.logger.WarnContext(ctx, "AMQP connection lost, retrying", log.FieldError, lastErr, "attempt", attempt+1)
	}
	return fmt.Errorf("publish message: %w", lastErr)
}

func (p *Publisher) publish(ctx context.Context, body []byte) error {
	p.mu.Lock()
	ch := p.ch
	p.mu.Unlock()
	if ch == nil {
		return amqp091.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return ch.PublishWithContext(ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *Publisher) reconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	ch, conn, err := p.connect()
	if err != nil {
		return err
	}
	p.ch, p.conn = ch, conn
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *Publisher) closeLocked() error {
	var err error
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err = p.conn.Close()
		p.conn = nil
	}
	return err
}

// exponentialBackoff returns 1s, 2s, 4s ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// isConnectionError reports errors that a fresh connection may fix.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
