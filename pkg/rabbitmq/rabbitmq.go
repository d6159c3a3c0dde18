package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"tokodash/internal/models"
	logx "tokodash/pkg/logger"

	amqp "github.com/streadway/amqp"
)

// DecisionQueue receives one message per resolved moderation item.
const DecisionQueue = "moderation_decisions"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the decision queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareDecisionQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logx.Info().Str("queue", DecisionQueue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareDecisionQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		DecisionQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", DecisionQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishDecision sends event to the decision queue as persistent JSON.
func (c *Client) PublishDecision(event models.DecisionEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal decision event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",            // default exchange
		DecisionQueue, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish decision event: %w", err)
	}

	logx.Debug().Str("event_id", event.ID).Str("kind", string(event.Kind)).Int("item_id", event.ItemID).Msg("published decision event")
	return nil
}

// ConsumeDecisions delivers decision events to handler until the channel closes.
// Messages the handler fails on are requeued; undecodable ones are dropped.
func (c *Client) ConsumeDecisions(handler func(models.DecisionEvent) error) (<-chan struct{}, error) {
	if c.channel == nil {
		return nil, fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	if err := declareDecisionQueue(c.channel); err != nil {
		return nil, err
	}

	msgs, err := c.channel.Consume(
		DecisionQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
	}()
	return done, nil
}

// acknowledger is the part of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(msg amqp.Delivery, handler func(models.DecisionEvent) error) {
	settle(msg, msg.DeliveryTag, msg.Body, handler)
}

func settle(ack acknowledger, tag uint64, body []byte, handler func(models.DecisionEvent) error) {
	var event models.DecisionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logx.Warn().Err(err).Uint64("delivery_tag", tag).Msg("dropping undecodable decision event")
		if nackErr := ack.Nack(false, false); nackErr != nil {
			logx.Error().Err(nackErr).Uint64("delivery_tag", tag).Msg("error nacking message")
		}
		return
	}

	if err := handler(event); err != nil {
		logx.Error().Err(err).Uint64("delivery_tag", tag).Msg("error processing decision event")
		if nackErr := ack.Nack(false, true); nackErr != nil {
			logx.Error().Err(nackErr).Uint64("delivery_tag", tag).Msg("error nacking message")
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		logx.Error().Err(ackErr).Uint64("delivery_tag", tag).Msg("error acking message")
	}
}
