package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"ordindex.dev/core/index"
	"ordindex.dev/core/internal/config"
	"ordindex.dev/core/internal/logging"
	"ordindex.dev/core/internal/rpcclient"
)

var runFlags = config.DefaultConfig()
var heightLimit int64

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.DataDir, "datadir", runFlags.DataDir, "index data directory")
	runCmd.Flags().StringVar(&runFlags.RPCURL, "rpc-url", runFlags.RPCURL, "chain RPC base URL")
	runCmd.Flags().StringVar(&runFlags.LogLevel, "log-level", runFlags.LogLevel, "log level: debug|info|warn|error")
	runCmd.Flags().StringVar(&runFlags.LogFormat, "log-format", runFlags.LogFormat, "log format: console|json")
	runCmd.Flags().Uint64Var(&runFlags.CommitInterval, "commit-interval", runFlags.CommitInterval, "blocks indexed between commits")
	runCmd.Flags().Int64Var(&heightLimit, "height-limit", -1, "stop once this height is exceeded (-1 for no limit)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Index blocks from the configured RPC endpoint until caught up or interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := runFlags
		if heightLimit >= 0 {
			limit := uint64(heightLimit)
			cfg.HeightLimit = &limit
		}
		return runIndexer(cfg)
	},
}

func runIndexer(cfg config.Config) error {
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create datadir: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	store, err := index.Open(config.StorePath(cfg.DataDir))
	if err != nil {
		return err
	}
	defer store.Close()

	client := rpcclient.New(cfg.RPCURL)
	indexer := index.NewIndexer(client, nil, log)
	metrics := index.NewMetrics(prometheus.DefaultRegisterer)

	opts := []index.UpdaterOption{
		index.WithCommitInterval(cfg.CommitInterval),
		index.WithMetrics(metrics),
		index.WithProgress(textProgress{}),
	}
	if cfg.HeightLimit != nil {
		opts = append(opts, index.WithHeightLimit(*cfg.HeightLimit))
	}
	updater := index.NewUpdater(store, indexer, log, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		updater.RequestStop()
	}()

	if err := updater.Run(ctx); err != nil {
		if indexer.Reorged() {
			log.Error().Err(err).Msg("reorg detected; rollback is a higher-layer concern, stopping")
		}
		return err
	}
	return nil
}
