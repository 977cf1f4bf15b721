package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

// AMQP publishes notifications as JSON to a topic exchange with routing
// key notification.<kind>, for delivery by an external worker.
type AMQP struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	profile  string
}

type message struct {
	Profile string `json:"profile"`
	clinic.Notification
}

func NewAMQP(url, exchange, profile string) (*AMQP, error) {
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
	return &AMQP{conn: conn, ch: ch, exchange: exchange, profile: profile}, nil
}

func RoutingKey(n clinic.Notification) string {
	return "notification." + string(n.Kind)
}

func encode(profile string, n clinic.Notification) ([]byte, error) {
	return json.Marshal(message{Profile: profile, Notification: n})
}

func (a *AMQP) Notify(ctx context.Context, n clinic.Notification) error {
	body, err := encode(a.profile, n)
	if err != nil {
		return err
	}
	return a.ch.PublishWithContext(ctx, a.exchange, RoutingKey(n), false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   n.At,
		Body:        body,
	})
}

func (a *AMQP) Close() error {
	if a.ch != nil {
		_ = a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
