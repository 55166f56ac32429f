package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"salescope/internal/chain"
	"salescope/internal/config"
	"salescope/internal/enrich"
	"salescope/internal/model"
	"salescope/internal/parser"
	"salescope/internal/registry"
	"salescope/internal/storage"
	"salescope/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "salescope",
		Short:        "NFT marketplace sale parser",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	parseCmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse transactions into sale summaries",
		RunE:  runParse,
	}

	parseCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	parseCmd.Flags().StringSlice("tx", nil, "transaction hashes (comma-separated)")
	parseCmd.Flags().String("registry", "", "registry overrides file (YAML)")
	parseCmd.Flags().String("monitor", "", "monitored collection address for swap mode")
	parseCmd.Flags().String("out", "./data/sales.jsonl", "output JSONL path")
	parseCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	parseCmd.Flags().Bool("no-enrich", false, "skip name/metadata/fiat enrichment")
	parseCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(parseCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Scan a block range for marketplace sales",
		RunE:  runBackfill,
	}

	backfillCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	backfillCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	backfillCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	backfillCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	backfillCmd.Flags().String("registry", "", "registry overrides file (YAML)")
	backfillCmd.Flags().String("monitor", "", "monitored collection address for swap mode")
	backfillCmd.Flags().String("out", "./data/sales.jsonl", "output JSONL path")
	backfillCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	backfillCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	backfillCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	backfillCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	backfillCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	backfillCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(backfillCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runParse(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadParse(cfgFile, cmd.Flags())
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
	if len(cfg.Txs) == 0 {
		return fmt.Errorf("at least one tx hash is required")
	}

	hashes, err := parseTxHashes(cfg.Txs)
	if err != nil {
		return err
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

	var enricher parser.Enricher
	if !cfg.NoEnrich {
		enricher = enrich.NewChainEnricher(chainClient, logger)
	}

	saleParser := parser.New(parser.Config{MonitorCollection: monitor}, reg, chainClient, enricher, logger)

	sinks, closeSinks, err := buildSinks(ctx, cfg.Out, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeSinks()

	logger.Info("parse start",
		zap.String("rpc", cfg.RPCURL),
		zap.Int("txs", len(hashes)),
		zap.String("out", cfg.Out),
		zap.Bool("enrich", !cfg.NoEnrich),
	)

	var parsed, dropped int
	for _, hash := range hashes {
		rcpt, err := chainClient.TransactionContext(ctx, hash)
		if err != nil {
			return err
		}

		sum, err := saleParser.Parse(ctx, rcpt)
		if err != nil {
			return err
		}
		if sum == nil {
			dropped++
			logger.Info("transaction not applicable", zap.String("tx", hash.Hex()))
			continue
		}

		for _, sink := range sinks {
			if err := sink.PutSales(ctx, []*model.Summary{sum}); err != nil {
				return err
			}
		}
		parsed++

		logger.Info("sale parsed",
			zap.String("tx", hash.Hex()),
			zap.String("market", sum.MarketName),
			zap.Uint64("quantity", sum.Quantity),
			zap.Float64("total_price", sum.TotalPrice),
			zap.String("currency", sum.Currency.Symbol),
		)
	}

	logger.Info("parse complete", zap.Int("parsed", parsed), zap.Int("dropped", dropped))
	return nil
}

func parseTxHashes(inputs []string) ([]common.Hash, error) {
	hashes := make([]common.Hash, 0, len(inputs))
	for _, input := range inputs {
		data, err := hexutil.Decode(input)
		if err != nil {
			return nil, fmt.Errorf("invalid tx hash: %s", input)
		}
		if len(data) != 32 {
			return nil, fmt.Errorf("invalid tx hash length: %s", input)
		}
		hashes = append(hashes, common.BytesToHash(data))
	}
	return hashes, nil
}

func parseMonitor(input string) (common.Address, error) {
	if input == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid monitor address: %s", input)
	}
	return common.HexToAddress(input), nil
}

func buildSinks(ctx context.Context, out, pgDSN string) ([]storage.SaleSink, func(), error) {
	sinks := []storage.SaleSink{storage.NewJsonlStorage(out)}
	closeSinks := func() {}

	if pgDSN != "" {
		store, err := postgres.NewStore(ctx, pgDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		sinks = append(sinks, store)
		closeSinks = store.Close
	}

	return sinks, closeSinks, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
