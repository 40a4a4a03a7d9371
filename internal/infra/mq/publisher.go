package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/BruksfildServices01/lesson-scheduler/internal/notify"
)

// channel é o pedaço de *amqp.Channel que o publisher usa.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher entrega os eventos de reserva numa exchange topic;
// a routing key é o tipo do evento (booking.confirmed, ...).
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Notify usa o id da reserva e o tipo do evento como MessageId, para o
// consumidor descartar reentregas.
func (p *Publisher) Notify(ctx context.Context, ev notify.Event) error {
	id := fmt.Sprintf("%s:%d:%d", ev.Kind, ev.BookingID, ev.OccurredAt.Unix())
	return p.publish(ctx, string(ev.Kind), ev, ev.OccurredAt.UTC(), id)
}

func (p *Publisher) publish(ctx context.Context, key string, v any, at time.Time, messageID string) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	// amqp.Channel não é seguro para publicação concorrente.
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    at,
		MessageId:    messageID,
		Body:         b,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var _ notify.Notifier = (*Publisher)(nil)
