package main

import (
	"context"

	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubev2v/pcap-query/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the river job tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		restore := initLogger(cfg)
		defer restore()

		ctx := context.Background()

		pool, err := newPool(ctx, cfg)
		if err != nil {
			zap.S().Fatalw("initializing database pool", "error", err)
		}
		defer pool.Close()

		migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
		if err != nil {
			zap.S().Fatalw("initializing migrator", "error", err)
		}

		res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
		if err != nil {
			zap.S().Fatalw("migrating river tables", "error", err)
		}

		for _, v := range res.Versions {
			zap.S().Infow("river migration applied", "version", v.Version)
		}
		zap.S().Info("Db migrated")

		return nil
	},
}
