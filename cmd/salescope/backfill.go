package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salescope/internal/backfill"
	"salescope/internal/chain"
	"salescope/internal/config"
	"salescope/internal/parser"
	"salescope/internal/registry"
	"salescope/internal/storage"
	"salescope/internal/storage/postgres"
)

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBackfill(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.ToBlock != 0 && cfg.ToBlock < cfg.FromBlock {
		return fmt.Errorf("to block %d is before from block %d", cfg.ToBlock, cfg.FromBlock)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reg, err := registry.Load(cfg.Registry)
	if err != nil {
		return err
	}

	monitor, err := parseMonitor(cfg.Monitor)
	if err != nil {
		return err
	}

	// Backfill skips per-sale enrichment; a block range scan would hammer
	// the RPC with name and oracle lookups for every sale.
	saleParser := parser.New(parser.Config{MonitorCollection: monitor}, reg, chainClient, nil, logger)

	sinks, closeSinks, err := buildSinks(ctx, cfg.Out, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeSinks()

	var checkpoint backfill.CheckpointStore = backfill.NewFileCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled)
	if cfg.PGDSN != "" && cfg.CheckpointEnabled {
		store := sinks[len(sinks)-1].(*postgres.Store)
		checkpoint = &backfill.DBCheckpointStore{Store: store, Name: "backfill"}
	}

	toBlock := cfg.ToBlock
	if toBlock == 0 {
		latest, err := chainClient.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
		toBlock = latest
	}

	logger.Info("backfill start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from_block", cfg.FromBlock),
		zap.Uint64("to_block", toBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
	)

	runner := backfill.NewRunner(backfill.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      toBlock,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, reg, saleParser, storage.NewMulti(sinks...), checkpoint, logger)

	return runner.Run(ctx)
}
