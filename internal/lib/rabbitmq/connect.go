package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect подключается к RabbitMQ, повторяя попытки retries раз с паузой delay.
func Connect(ctx context.Context, url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var (
		conn *amqp.Connection
		err  error
	)
	if retries < 1 {
		retries = 1
	}

	for attempt := range retries {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		if attempt == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}
