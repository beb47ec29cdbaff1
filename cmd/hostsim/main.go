// Command hostsim publishes a synthetic host session to the host events topic.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/config"
	"github.com/nebel/CurrencyWatchdog/internal/hostsim"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	var (
		brokers  string
		topic    string
		rps      float64
		duration time.Duration
		count    int
		itemIDs  string
		mockMode bool
	)
	cfg := hostsim.Config{}
	flag.StringVar(&brokers, "kafka-brokers", config.GetEnvOrDefault("KAFKA_BROKERS", "localhost:9092"), "Kafka broker addresses (comma-separated)")
	flag.StringVar(&topic, "topic", "host.events", "Kafka topic for host events")
	flag.Float64Var(&rps, "rps", 2.0, "State changes per second after login")
	flag.DurationVar(&duration, "duration", 60*time.Second, "Duration to run (0 = until interrupted)")
	flag.IntVar(&count, "count", 0, "Stop after N state changes (0 = no limit)")
	flag.Int64Var(&cfg.Seed, "seed", 0, "Random seed for deterministic generation (0 = random)")
	flag.StringVar(&cfg.EventDist, "event-dist", hostsim.DefaultEventDist, "Event kind distribution (format: kind:weight,...)")
	flag.StringVar(&itemIDs, "items", "", "Comma-separated item ids to vary (default: seals and tomestones)")
	flag.BoolVar(&mockMode, "mock", false, "Log events instead of sending them to Kafka")
	flag.Parse()

	for _, s := range strings.Split(itemIDs, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			slog.Error("Invalid item id", "value", s, "error", err)
			os.Exit(1)
		}
		cfg.ItemIDs = append(cfg.ItemIDs, uint32(id))
	}

	gen, err := hostsim.NewGenerator(cfg)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	var pub hostsim.Publisher = hostsim.LogPublisher{}
	if !mockMode {
		kafkaPub, err := hostsim.NewKafkaPublisher(brokers, topic)
		if err != nil {
			slog.Error("Failed to create Kafka publisher", "error", err)
			slog.Info("Tip: Start Kafka with 'docker compose up -d' or use --mock flag to test without Kafka")
			os.Exit(1)
		}
		pub = kafkaPub
	}
	defer pub.Close()

	slog.Info("Starting host simulator", "topic", topic, "rps", rps, "duration", duration, "seed", cfg.Seed)
	sent, err := hostsim.Run(ctx, gen, pub, rps, duration, count)
	if err != nil {
		slog.Error("Simulation failed", "sent", sent, "error", err)
		os.Exit(1)
	}
	slog.Info("Host simulator completed", "sent", sent)
}
