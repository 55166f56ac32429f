package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"salescope/internal/chain"
	"salescope/internal/model"
	"salescope/internal/parser"
	"salescope/internal/registry"
	"salescope/internal/storage"
)

// RunConfig holds runtime settings for a backfill.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner scans historical blocks for settlement logs on tracked markets,
// parses each matching transaction once, and persists the summaries.
type Runner struct {
	cfg        RunConfig
	chain      *chain.Client
	reg        *registry.Registry
	parser     *parser.Parser
	sink       storage.SaleSink
	checkpoint CheckpointStore
	logger     *zap.Logger
	seen       map[common.Hash]struct{}
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, chainClient *chain.Client, reg *registry.Registry, saleParser *parser.Parser, sink storage.SaleSink, checkpoint CheckpointStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		reg:        reg,
		parser:     saleParser,
		sink:       sink,
		checkpoint: checkpoint,
		logger:     logger,
		seen:       make(map[common.Hash]struct{}),
	}
}

// Run executes the backfill loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if r.parser == nil {
		return fmt.Errorf("parser is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && cp.LastProcessedBlock >= from {
			from = cp.LastProcessedBlock + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to backfill", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	addresses := r.reg.MarketAddresses()
	topics := r.reg.SaleSignatures()

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch sale logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		logs, err := r.filterLogsWithRetry(ctx, blockRange.From, blockRange.To, addresses, topics)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		sales, err := r.parseBatch(ctx, logs)
		if err != nil {
			return err
		}

		if err := r.sink.PutSales(ctx, sales); err != nil {
			return fmt.Errorf("store sales: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete",
			zap.Int("logs", len(logs)),
			zap.Int("sales", len(sales)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

// parseBatch parses each distinct transaction behind the filtered logs.
// Transactions the parser deems not applicable are dropped silently.
func (r *Runner) parseBatch(ctx context.Context, logs []types.Log) ([]*model.Summary, error) {
	sales := make([]*model.Summary, 0, len(logs))
	for _, log := range logs {
		if r.isDuplicate(log.TxHash) {
			continue
		}

		rcpt, err := r.transactionWithRetry(ctx, log.TxHash)
		if err != nil {
			return nil, fmt.Errorf("fetch transaction %s: %w", log.TxHash.Hex(), err)
		}

		sum, err := r.parser.Parse(ctx, rcpt)
		if err != nil {
			return nil, err
		}
		if sum == nil {
			continue
		}
		sales = append(sales, sum)
	}
	return sales, nil
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topics []common.Hash) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, addresses, topics)
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) transactionWithRetry(ctx context.Context, txHash common.Hash) (model.Receipt, error) {
	var rcpt model.Receipt
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		rcpt, err = r.chain.TransactionContext(ctx, txHash)
		if err != nil {
			r.logger.Warn("transaction fetch failed", zap.Error(err), zap.String("tx", txHash.Hex()))
		}
		return err
	})
	return rcpt, err
}

func (r *Runner) isDuplicate(txHash common.Hash) bool {
	if _, ok := r.seen[txHash]; ok {
		return true
	}
	r.seen[txHash] = struct{}{}
	return false
}
