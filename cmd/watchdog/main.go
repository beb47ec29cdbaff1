package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nebel/CurrencyWatchdog/internal/command"
	"github.com/nebel/CurrencyWatchdog/internal/config"
	"github.com/nebel/CurrencyWatchdog/internal/consumer"
	"github.com/nebel/CurrencyWatchdog/internal/database"
	"github.com/nebel/CurrencyWatchdog/internal/host"
	"github.com/nebel/CurrencyWatchdog/internal/inventory"
	"github.com/nebel/CurrencyWatchdog/internal/kafka"
	"github.com/nebel/CurrencyWatchdog/internal/matcher"
	"github.com/nebel/CurrencyWatchdog/internal/metrics"
	"github.com/nebel/CurrencyWatchdog/internal/overlay"
	"github.com/nebel/CurrencyWatchdog/internal/processor"
	"github.com/nebel/CurrencyWatchdog/internal/producer"
	"github.com/nebel/CurrencyWatchdog/internal/reloader"
	"github.com/nebel/CurrencyWatchdog/internal/resolver"
	"github.com/nebel/CurrencyWatchdog/internal/sender"
	"github.com/nebel/CurrencyWatchdog/internal/sender/email"
	"github.com/nebel/CurrencyWatchdog/internal/sender/slack"
	"github.com/nebel/CurrencyWatchdog/internal/sender/strategy"
	"github.com/nebel/CurrencyWatchdog/internal/sender/webhook"
	"github.com/nebel/CurrencyWatchdog/internal/server"
	"github.com/nebel/CurrencyWatchdog/internal/snapshot"
	"github.com/nebel/CurrencyWatchdog/internal/zone"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting currency watchdog",
		"kafka_brokers", cfg.KafkaBrokers,
		"host_events_topic", cfg.HostEventsTopic,
		"chat_topic", cfg.ChatTopic,
		"consumer_group_id", cfg.ConsumerGroupID,
		"redis_addr", cfg.RedisAddr,
		"postgres_dsn", config.MaskDSN(cfg.PostgresDSN),
		"http_addr", cfg.HTTPAddr,
		"profile", cfg.Profile,
		"version_poll_interval", cfg.VersionPollInterval,
	)

	if err := cfg.Validate(); err != nil {
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

	if err := run(ctx, cfg); err != nil {
		slog.Error("Watchdog stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Currency watchdog stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Postgres: item catalog and alert history.
	db, err := database.NewDB(cfg.PostgresDSN)
	if err != nil {
		slog.Info("Tip: Start Postgres with 'docker compose up -d postgres'")
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	catalog := database.NewCatalog(db)
	if err := catalog.Load(ctx); err != nil {
		return err
	}
	go catalog.Run(ctx, cfg.CatalogRefreshInterval)

	// Redis: settings snapshots and metrics.
	redisClient, err := config.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		slog.Info("Tip: Start Redis with 'docker compose up -d redis'")
		return err
	}
	defer redisClient.Close()

	store := snapshot.NewStore(redisClient, cfg.Profile)
	if cfg.SettingsFile != "" {
		version, err := store.Import(ctx, cfg.SettingsFile)
		if err != nil {
			return err
		}
		slog.Info("Imported settings file", "path", cfg.SettingsFile, "version", version)
	}

	reload := reloader.NewReloader(store, cfg.VersionPollInterval)
	if err := reload.Start(ctx); err != nil {
		return err
	}
	initial, err := store.LoadOrDefault(ctx)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector(cfg.Profile, redisClient)
	collector.SetReportInterval(cfg.MetricsInterval)
	collector.Start(ctx)
	defer collector.Stop()

	// Kafka: host events in, chat batches out.
	if brokers := kafka.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		for _, topic := range []string{cfg.HostEventsTopic, cfg.ChatTopic} {
			if err := kafka.EnsureTopic(ctx, brokers[0], topic, 1); err != nil {
				slog.Warn("Could not ensure Kafka topic", "topic", topic, "error", err)
			}
		}
	}

	chatProducer, err := producer.NewProducer(cfg.KafkaBrokers, cfg.ChatTopic)
	if err != nil {
		return err
	}
	defer chatProducer.Close()

	hostConsumer, err := consumer.NewConsumer(cfg.KafkaBrokers, cfg.HostEventsTopic, cfg.ConsumerGroupID)
	if err != nil {
		slog.Info("Tip: Start Kafka with 'docker compose up -d kafka'")
		return err
	}
	defer hostConsumer.Close()

	// Chat sink.
	endpoints, err := sender.ParseEndpoints(cfg.ChatEndpoints)
	if err != nil {
		return err
	}
	emailSender, err := email.NewDefaultSender(ctx)
	if err != nil {
		return err
	}
	registry := strategy.NewRegistry()
	registry.Register(chatProducer)
	registry.Register(slack.NewSender())
	registry.Register(webhook.NewSender())
	registry.Register(emailSender)
	registry.Register(sender.LogSender{})

	chat := sender.NewSender(registry, endpoints)
	if cfg.RecordHistory {
		chat.WithHistory(db)
	}
	chatQueue := sender.NewQueue(chat, sender.DefaultQueueSize, collector)
	chatQueue.Start(ctx)
	defer chatQueue.Close()
	slog.Info("Chat sink configured", "endpoints", len(endpoints), "types", registry.List())

	hub := overlay.NewHub(cfg.MaxOverlayClients)
	defer hub.Close()

	// Engine.
	inv := inventory.New()
	bridge := host.NewBridge(inv)
	watcher := zone.NewWatcher(bridge)
	defer watcher.Close()

	updater := processor.NewUpdater(processor.Config{
		Evaluator: matcher.NewMatcher(resolver.New(catalog, inv)),
		Session:   bridge,
		Login:     watcher,
		Chat:      chatQueue,
		Overlay:   hub,
		Sources:   bridge.Sources(watcher),
		Metrics:   collector,
	})
	defer updater.Close()

	commands := command.NewHandler(store, updater, reload)
	loop := newEventLoop(bridge, updater, commands, reload.Updates(), 256)

	bridge.ResendSignal().Subscribe(func(ctx context.Context, _ struct{}) {
		if err := updater.ResendActiveAlerts(ctx); err != nil {
			slog.Error("Resend failed", "error", err)
		}
	})
	bridge.CommandSignal().Subscribe(loop.runCommand)

	if err := updater.HandleConfigChange(ctx, initial); err != nil {
		slog.Error("Failed to apply initial settings", "error", err)
	}

	// HTTP: overlay socket and API.
	srv := server.NewServer(cfg.HTTPAddr, server.NewHandlers(loop, hub, db, collector), collector)
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := hostConsumer.Run(ctx, loop.Events()); err != nil {
			slog.Error("Host event consumer failed", "error", err)
		}
	}()

	slog.Info("Starting event loop")
	loop.Run(ctx)
	return nil
}
