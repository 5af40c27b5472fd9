package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"security-core/engine/internal/alert/domain"
)

// KafkaSink streams full alert records as JSON to a Kafka topic for
// downstream analytics consumers. Optional; enabled by config.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink creates a Kafka sink writing alerts to topic. Returns nil if
// brokers or topic is empty. Call Close when shutting down.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaSink{writer: writer}
}

func (s *KafkaSink) Name() string { return "kafka" }

// Deliver serializes the alert as JSON and writes it to the topic, keyed by
// till so one till's alerts stay in partition order.
func (s *KafkaSink) Deliver(ctx context.Context, a *domain.Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(a.TillID),
		Value: payload,
	})
}

// Close closes the Kafka writer. Safe to call multiple times.
func (s *KafkaSink) Close() error {
	if s == nil || s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
