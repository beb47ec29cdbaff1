package hostsim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/nebel/CurrencyWatchdog/internal/events"
	kafkautil "github.com/nebel/CurrencyWatchdog/internal/kafka"
)

// Publisher sends host events somewhere.
type Publisher interface {
	Publish(ctx context.Context, ev *events.HostEvent) error
	Close() error
}

// KafkaPublisher writes JSON host events to a topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a synchronous writer for topic. All events go to
// one partition so the watchdog sees them in order.
func NewKafkaPublisher(brokers, topic string) (*KafkaPublisher, error) {
	brokerList := kafkautil.ParseBrokers(brokers)
	if len(brokerList) == 0 {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokerList...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			WriteTimeout: kafkautil.WriteTimeout,
			RequiredAcks: kafka.RequireOne,
		},
		topic: topic,
	}, nil
}

// Publish writes ev keyed by a fixed session key.
func (p *KafkaPublisher) Publish(ctx context.Context, ev *events.HostEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal host event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte("session"),
		Value: value,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "ts", Value: []byte(strconv.FormatInt(ev.TS, 10))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write host event to kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	slog.Info("Closing host event publisher", "topic", p.topic)
	return p.writer.Close()
}

// LogPublisher logs events instead of sending them.
type LogPublisher struct{}

var _ Publisher = LogPublisher{}

func (LogPublisher) Publish(ctx context.Context, ev *events.HostEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal host event: %w", err)
	}
	slog.Info("Mock publish", "type", ev.Type, "event_json", string(value))
	return nil
}

func (LogPublisher) Close() error { return nil }
