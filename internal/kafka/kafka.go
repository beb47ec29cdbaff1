// Package kafka provides shared Kafka utilities.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	// ReadTimeout is the maximum time to wait for a Kafka read operation.
	ReadTimeout = 10 * time.Second
	// CommitInterval is how often to commit offsets (after processing).
	CommitInterval = 1 * time.Second
	// WriteTimeout is the maximum time to wait for a Kafka write operation.
	WriteTimeout = 10 * time.Second
)

// ParseBrokers parses a comma-separated broker list and trims whitespace.
func ParseBrokers(brokers string) []string {
	if brokers == "" {
		return nil
	}
	var brokerList []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokerList = append(brokerList, b)
		}
	}
	return brokerList
}

// EnsureTopic creates topic on the cluster controller if it does not exist yet.
func EnsureTopic(ctx context.Context, broker, topic string, partitions int) error {
	dialer := &kafka.Dialer{Timeout: WriteTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("failed to dial broker %s: %w", broker, err)
	}
	defer conn.Close()

	existing, err := conn.ReadPartitions(topic)
	if err == nil && len(existing) > 0 {
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get controller: %w", err)
	}

	controllerConn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}

	slog.Info("Kafka topic ready", "topic", topic, "partitions", partitions)
	return nil
}
