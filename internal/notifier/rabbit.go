package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
)

// RabbitNotifier publishes notifications to a fanout exchange, routed by
// category.
type RabbitNotifier struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
}

func NewRabbitNotifier(url string, exchange string) (*RabbitNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error declare exchange %s: %w", exchange, err)
	}

	return &RabbitNotifier{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
	}, nil
}

func (n *RabbitNotifier) Notify(ctx context.Context, notification entities.Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	return n.ch.PublishWithContext(
		ctx,
		n.exchange,
		notification.Category,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    notification.ID,
			Timestamp:    notification.CreatedAt,
			Body:         body,
		},
	)
}

func (n *RabbitNotifier) Close() error {
	if err := n.ch.Close(); err != nil {
		n.conn.Close()
		return err
	}

	return n.conn.Close()
}
