// Package notifier publishes message events onto the push-notification
// channel the private-messaging relay consumes.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageEvent is the payload pushed for one delivered private message.
type MessageEvent struct {
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	ReceiverHandle string    `json:"receiver_handle,omitempty"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sent_at"`
}

// Notifier pushes message events to whatever relays them to clients.
type Notifier interface {
	Publish(ctx context.Context, event MessageEvent) error
	Close() error
}

type rabbitNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitNotifier connects to RabbitMQ and declares the fanout exchange
// message events are published to.
func NewRabbitNotifier(url, exchange string) (Notifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &rabbitNotifier{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

func (n *rabbitNotifier) Publish(ctx context.Context, event MessageEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return n.channel.PublishWithContext(ctx,
		n.exchange,
		"", // routing key is unused on a fanout exchange
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
}

func (n *rabbitNotifier) Close() error {
	if err := n.channel.Close(); err != nil {
		return err
	}

	return n.conn.Close()
}
