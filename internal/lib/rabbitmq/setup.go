package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

const (
	// Exchange — обменник событий дашборда.
	Exchange = "dashboard"
	// RoutingSnapshotCreated — ключ маршрутизации сообщений о новом снимке.
	RoutingSnapshotCreated = "snapshot.created"
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// DashboardQueues — очереди, которые объявляет публикующий процесс,
// чтобы сообщения не терялись до появления потребителей.
func DashboardQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "dashboard.snapshots", RoutingKey: RoutingSnapshotCreated},
	}
}

// SetupChannel открывает канал, объявляет direct-обменник exchange
// и привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, exchange string, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
