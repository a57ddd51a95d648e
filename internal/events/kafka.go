package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events as JSON, keyed by order ID so that all
// events of one order land on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers. Writes
// are asynchronous: Publish returns once the message is queued and delivery
// failures are logged from the writer's completion callback.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
	p := newKafkaPublisher(writer, logger)
	writer.Completion = p.onCompletion
	return p
}

func newKafkaPublisher(writer messageWriter, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// onCompletion reports the outcome of an asynchronous batch.
func (p *KafkaPublisher) onCompletion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, msg := range messages {
		p.logger.Warn().
			Err(err).
			Str("event_type", eventType(msg)).
			Str("order_id", string(msg.Key)).
			Msg("failed to deliver order event")
	}
}

func eventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event-type" {
			return string(h.Value)
		}
	}
	return ""
}

// Publish writes one event.
func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug().
		Str("event_type", string(event.Type)).
		Str("order_id", event.OrderID.String()).
		Msg("order event queued")
	return nil
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
