package audit

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSink streams audit events to a broker exchange so downstream systems
// (SIEM, reporting) can consume them without touching this service.
type AMQPSink struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
}

func NewAMQPSink(url, exchange, routingKey string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &AMQPSink{
		conn:       conn,
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

func (s *AMQPSink) Log(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return s.ch.PublishWithContext(ctx, s.exchange, s.routingKey, false, false,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: e.CorrelationID,
			MessageId:     e.ID,
			Timestamp:     e.At,
			Body:          body,
		})
}

func (s *AMQPSink) Close() error {
	return errors.Join(s.ch.Close(), s.conn.Close())
}
