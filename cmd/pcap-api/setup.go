package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kubev2v/pcap-query/internal/config"
	"github.com/kubev2v/pcap-query/internal/events"
	"github.com/kubev2v/pcap-query/internal/filter"
	"github.com/kubev2v/pcap-query/internal/storage"
	"github.com/kubev2v/pcap-query/pkg/log"
)

// initLogger replaces the global logger. The returned func restores it and flushes the logger.
func initLogger(cfg *config.Config) func() {
	logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel))
	undo := zap.ReplaceGlobals(logger)
	return func() {
		undo()
		_ = logger.Sync()
	}
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := (&url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Database.User, cfg.Database.Password),
		Host:   net.JoinHostPort(cfg.Database.Hostname, cfg.Database.Port),
		Path:   cfg.Database.Name,
	}).String()

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

func newStorage(cfg *config.StorageConfig) (storage.Storage, error) {
	switch cfg.Type {
	case "minio":
		return storage.NewMinioStorage(
			storage.WithEndpoint(cfg.Endpoint),
			storage.WithBucket(cfg.Bucket),
			storage.WithAccessKey(cfg.AccessKey),
			storage.WithSecretKey(cfg.SecretKey),
			storage.WithSSL(cfg.UseSSL),
		)
	case "local":
		return storage.NewLocalStorage(cfg.LocalRoot), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// newEventProducer writes to kafka when brokers are configured and to the log otherwise.
func newEventProducer(cfg *config.Config) (*events.EventProducer, error) {
	kafka := cfg.Service.Kafka
	source := events.WithSource(cfg.Service.EventSource)
	if len(kafka.Brokers) == 0 {
		zap.S().Named("events").Info("no kafka broker configured, events are logged")
		return events.NewEventProducer(&events.StdoutWriter{}, source), nil
	}

	saramaCfg, err := kafka.SaramaConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid kafka configuration: %w", err)
	}

	w, err := events.NewKafkaWriter(kafka.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka writer: %w", err)
	}

	zap.S().Named("events").Infow("events are sent to kafka", "brokers", kafka.Brokers, "topic", kafka.Topic)
	return events.NewEventProducer(w, events.WithOutputTopic(kafka.Topic), source), nil
}

func pcapDefaults(cfg *config.PcapConfig) filter.Defaults {
	return filter.Defaults{
		BasePath:              cfg.BasePath,
		BaseInterimResultPath: cfg.BaseInterimResultPath,
		FinalOutputPath:       cfg.FinalOutputPath,
		NumReducers:           cfg.NumReducers,
		PageSize:              cfg.PageSize,
	}
}
