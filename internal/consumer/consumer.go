// Package consumer provides Kafka consumer functionality for the host.events topic.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nebel/CurrencyWatchdog/internal/events"
	kafkautil "github.com/nebel/CurrencyWatchdog/internal/kafka"
)

// ContentTypeProtobuf marks a message whose value is a protobuf Struct
// instead of a JSON document.
const ContentTypeProtobuf = "application/x-protobuf"

// readErrorBackoff spaces out retries while the broker is unreachable.
const readErrorBackoff = time.Second

// Consumer wraps a Kafka reader and provides a simple interface for consuming host events.
type Consumer struct {
	reader *kafka.Reader
	topic  string
}

// NewConsumer creates a new Kafka consumer with the specified brokers, topic, and group ID.
// The consumer is configured for at-least-once delivery semantics.
func NewConsumer(brokers string, topic string, groupID string) (*Consumer, error) {
	if brokers == "" {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("groupID cannot be empty")
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka consumer",
		"brokers", brokerList,
		"topic", topic,
		"group_id", groupID,
	)

	// Host events are applied in order, so the topic is expected to have a
	// single partition per host session.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokerList,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        kafkautil.ReadTimeout,
		CommitInterval: kafkautil.CommitInterval,
		StartOffset:    kafka.LastOffset,
	})

	return &Consumer{
		reader: reader,
		topic:  topic,
	}, nil
}

// ReadEvent reads the next message from Kafka and decodes it as a HostEvent.
func (c *Consumer) ReadEvent(ctx context.Context) (*events.HostEvent, *kafka.Message, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read message from Kafka: %w", err)
	}

	ev, err := DecodeEvent(msg)
	if err != nil {
		return nil, &msg, err
	}
	return ev, &msg, nil
}

// Run reads events until ctx is cancelled and forwards them to out. Messages
// that fail to decode are logged and skipped.
func (c *Consumer) Run(ctx context.Context, out chan<- *events.HostEvent) error {
	slog.Info("Starting host event consumer loop", "topic", c.topic)

	for {
		ev, msg, err := c.ReadEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Host event consumer loop stopped")
				return nil
			}
			if msg != nil {
				slog.Warn("Skipping undecodable host event",
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err,
				)
				continue
			}
			slog.Error("Failed to read host event", "error", err)
			select {
			case <-time.After(readErrorBackoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		slog.Debug("Received host event", "type", ev.Type, "ts", ev.TS)

		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// DecodeEvent decodes a message value. JSON is the default; a protobuf
// content-type header selects the Struct encoding.
func DecodeEvent(msg kafka.Message) (*events.HostEvent, error) {
	data := msg.Value
	if headerValue(msg, "content-type") == ContentTypeProtobuf {
		var pb structpb.Struct
		if err := proto.Unmarshal(msg.Value, &pb); err != nil {
			return nil, fmt.Errorf("failed to unmarshal host event protobuf: %w", err)
		}
		var err error
		data, err = json.Marshal(pb.AsMap())
		if err != nil {
			return nil, fmt.Errorf("failed to convert host event protobuf: %w", err)
		}
	}

	var ev events.HostEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal host event: %w", err)
	}
	return &ev, nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Close gracefully closes the Kafka reader and releases resources.
func (c *Consumer) Close() error {
	slog.Info("Closing Kafka consumer", "topic", c.topic)
	if err := c.reader.Close(); err != nil {
		slog.Error("Error closing Kafka consumer", "error", err)
		return err
	}
	slog.Info("Kafka consumer closed successfully")
	return nil
}
