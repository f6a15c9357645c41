// Package kafka publishes turn events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/papercomputeco/kin/pkg/eventstream"
)

// DefaultTopic is the default topic for turn events.
const DefaultTopic = "kin.turns"

// Config configures a Publisher.
type Config struct {
	// Brokers is the Kafka broker list.
	Brokers []string

	// Topic overrides DefaultTopic when non-empty.
	Topic string

	// BatchTimeout caps how long writes buffer before flushing.
	BatchTimeout time.Duration
}

// Publisher writes turn events to Kafka, keyed by thread id so per-thread
// ordering is preserved within a partition.
type Publisher struct {
	writer *kafka.Writer
}

var _ eventstream.Publisher = (*Publisher)(nil)

// NewPublisher creates a Kafka publisher from the given configuration.
func NewPublisher(cfg Config) *Publisher {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 100 * time.Millisecond
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           batchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish emits one event.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal turn event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ThreadID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write turn event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
