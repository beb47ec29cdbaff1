// Package producer provides Kafka producer functionality for the chat alert topic.
package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	kafkautil "github.com/nebel/CurrencyWatchdog/internal/kafka"
	"github.com/nebel/CurrencyWatchdog/internal/payload"
)

// Producer wraps a Kafka writer and publishes chat batches as protobuf Structs.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer with the specified brokers and topic.
// Writes are synchronous so delivery errors reach the caller.
func NewProducer(brokers string, topic string) (*Producer, error) {
	if brokers == "" {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka producer",
		"brokers", brokerList,
		"topic", topic,
	)

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerList...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: kafkautil.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}, nil
}

// Topic returns the topic the producer writes to.
func (p *Producer) Topic() string {
	return p.topic
}

// EncodeBatch serializes a chat batch to protobuf bytes via its JSON form.
func EncodeBatch(batch payload.ChatBatch) ([]byte, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat batch: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to convert chat batch: %w", err)
	}
	pb, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build chat batch struct: %w", err)
	}
	value, err := proto.Marshal(pb)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat batch protobuf: %w", err)
	}
	return value, nil
}

// BuildMessage creates a Kafka message for an encoded batch, keyed by profile
// so one profile's batches stay ordered.
func BuildMessage(profile string, batch payload.ChatBatch, value []byte) kafka.Message {
	return kafka.Message{
		Key:   []byte(profile),
		Value: value,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/x-protobuf")},
			{Key: "batch_id", Value: []byte(batch.ID)},
			{Key: "lines", Value: []byte(fmt.Sprintf("%d", len(batch.Lines)))},
		},
		Time: batch.CreatedAt,
	}
}

// Publish encodes and writes a batch.
func (p *Producer) Publish(ctx context.Context, profile string, batch payload.ChatBatch) error {
	value, err := EncodeBatch(batch)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, BuildMessage(profile, batch, value)); err != nil {
		slog.Error("Failed to write message to Kafka",
			"batch_id", batch.ID,
			"topic", p.topic,
			"error", err,
		)
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	slog.Debug("Published chat batch", "batch_id", batch.ID, "lines", len(batch.Lines), "topic", p.topic)
	return nil
}

// Type returns the endpoint type the producer handles as a chat sender.
func (p *Producer) Type() string {
	return "kafka"
}

// Send publishes batch keyed by the profile in endpointValue.
func (p *Producer) Send(ctx context.Context, endpointValue string, batch *payload.ChatBatch) error {
	if endpointValue == "" {
		return fmt.Errorf("kafka endpoint requires a profile key")
	}
	return p.Publish(ctx, endpointValue, *batch)
}

// Close gracefully closes the Kafka writer and releases resources.
func (p *Producer) Close() error {
	slog.Info("Closing Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		slog.Error("Error closing Kafka producer", "error", err)
		return err
	}
	slog.Info("Kafka producer closed successfully")
	return nil
}
