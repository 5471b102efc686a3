// Package events delivers workout lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives events when no topic is configured.
const DefaultTopic = "workout.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per event, keyed by workout id so a
// workout's events stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// Compile-time check: KafkaPublisher satisfies workout.Publisher.
var _ workout.Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

// Publish encodes ev as JSON and writes it synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, ev models.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.WorkoutID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
		Time: ev.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s event: %w", ev.Type, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(brokers []string, topic string) workout.Publisher {
	if len(brokers) == 0 {
		return workout.NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
