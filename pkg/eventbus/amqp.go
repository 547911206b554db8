package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/log"
)

// AMQPConfig carries the RabbitMQ connection parameters read from the
// environment. Exchange is the single fanout exchange every channel name
// in the component design maps onto; consumers filter by Message.Type.
type AMQPConfig struct {
	Host     string
	Port     int
	Password string
	Exchange string
}

// AMQP is the streadway/amqp-backed Bus implementation. A connection
// drop triggers one reconnect attempt via NotifyClose; publishes issued
// while reconnecting are logged and dropped, consistent with the bus
// being best-effort.
type AMQP struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	cfg  AMQPConfig
	log  *log.Logger

	mu     sync.RWMutex
	closed bool
}

// NewAMQP dials RabbitMQ and declares the shared fanout exchange.
func NewAMQP(cfg AMQPConfig, logger *log.Logger) (*AMQP, error) {
	uri := fmt.Sprintf("amqp://guest:%s@%s:%d/", cfg.Password, cfg.Host, cfg.Port)
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("eventbus: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("eventbus: open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "fanout", false, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("eventbus: declare exchange: %w", err)
	}

	bus := &AMQP{conn: conn, ch: ch, cfg: cfg, log: logger}
	bus.watchReconnect()
	return bus, nil
}

// watchReconnect reopens the channel on an unexpected connection close.
// Publishes made during the brief reconnect window fail and are logged;
// the caller never blocks waiting for the reconnect to finish.
func (b *AMQP) watchReconnect() {
	closures := b.conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		err, ok := <-closures
		if !ok {
			return
		}
		b.log.Warnf("eventbus: connection closed, reconnecting: %v", err)

		uri := fmt.Sprintf("amqp://guest:%s@%s:%d/", b.cfg.Password, b.cfg.Host, b.cfg.Port)
		conn, dialErr := amqp.Dial(uri)
		if dialErr != nil {
			b.log.Errorf("eventbus: reconnect failed: %v", dialErr)
			return
		}
		ch, chErr := conn.Channel()
		if chErr != nil {
			b.log.Errorf("eventbus: reconnect channel failed: %v", chErr)
			conn.Close()
			return
		}
		if err := ch.ExchangeDeclare(b.cfg.Exchange, "fanout", false, false, false, false, nil); err != nil {
			b.log.Errorf("eventbus: reconnect exchange declare failed: %v", err)
		}

		b.mu.Lock()
		b.conn, b.ch = conn, ch
		b.mu.Unlock()
		b.watchReconnect()
	}()
}

func (b *AMQP) Publish(ctx context.Context, msg Message) error {
	b.mu.RLock()
	ch := b.ch
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		b.log.Errorf("eventbus: marshal %s: %v", msg.Type, err)
		return nil
	}

	err = ch.Publish(b.cfg.Exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		b.log.Errorf("eventbus: publish %s: %v", msg.Type, err)
	}
	return nil
}

func (b *AMQP) Subscribe(ctx context.Context, msgType string, handler func(Message)) error {
	b.mu.RLock()
	ch := b.ch
	b.mu.RUnlock()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("eventbus: declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", b.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("eventbus: bind queue: %w", err)
	}

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("eventbus: consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					b.log.Warnf("eventbus: decode error, dropping message: %v", err)
					continue
				}
				if msg.Type != msgType {
					continue
				}
				handler(msg)
			}
		}
	}()

	return nil
}

func (b *AMQP) Close() error {
	b.mu.Lock()
	b.closed = true
	conn := b.conn
	b.mu.Unlock()
	return conn.Close()
}
