package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiserver "github.com/kubev2v/pcap-query/internal/api_server"
	"github.com/kubev2v/pcap-query/internal/config"
	"github.com/kubev2v/pcap-query/internal/job"
	"github.com/kubev2v/pcap-query/internal/jobs"
	"github.com/kubev2v/pcap-query/internal/pdml"
	"github.com/kubev2v/pcap-query/internal/service"
	"github.com/kubev2v/pcap-query/pkg/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pcap query api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		restore := initLogger(cfg)
		defer restore()

		zap.S().Info("Starting API service...")
		defer zap.S().Info("API service stopped")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		if cfg.Service.Backend != "river" {
			zap.S().Fatalw("unsupported execution backend", "backend", cfg.Service.Backend)
		}

		pool, err := newPool(ctx, cfg)
		if err != nil {
			zap.S().Fatalw("initializing database pool", "error", err)
		}
		defer pool.Close()

		riverClient, err := jobs.NewClient(ctx, pool)
		if err != nil {
			zap.S().Fatalw("initializing river client", "error", err)
		}

		store, err := newStorage(cfg.Storage)
		if err != nil {
			zap.S().Fatalw("initializing storage", "error", err)
		}
		zap.S().Infow("result storage", "type", store.Type())

		producer, err := newEventProducer(cfg)
		if err != nil {
			zap.S().Fatalw("initializing event producer", "error", err)
		}
		defer func() { _ = producer.Close() }()

		manager := job.NewManager(jobs.NewFactory(riverClient))
		metrics.RegisterJobStatsCollector(manager)

		converter := pdml.NewConverter(cfg.Pcap.PdmlScriptPath)
		zap.S().Infow("pdml converter", "script", converter.Script())

		pcapSrv := service.NewPcapService(
			manager,
			store,
			converter,
			pcapDefaults(cfg.Pcap),
			service.WithEventWriter(producer),
		)

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, pcapSrv, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("Error running server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating metrics listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("Error running metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
