package enrich

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"salescope/internal/model"
)

// ContractCaller is the part of the chain client enrichment depends on.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// NameResolver turns an address into a display name, best-effort.
type NameResolver interface {
	ResolveName(ctx context.Context, addr common.Address) (string, error)
}

// MetadataFetcher loads token collection metadata.
type MetadataFetcher interface {
	TokenName(ctx context.Context, contract common.Address) (string, error)
}

// FiatOracle converts a native-denominated amount into a fiat display string.
type FiatOracle interface {
	FiatValue(ctx context.Context, amount float64) (string, error)
}

// Enricher fills the post-scan lookup fields of a summary. The four lookups
// are mutually independent and run concurrently; every failure degrades to a
// default value instead of aborting finalization.
type Enricher struct {
	names  NameResolver
	meta   MetadataFetcher
	fiat   FiatOracle
	logger *zap.Logger
}

// New builds an Enricher from its collaborators. Any of them may be nil, in
// which case the corresponding field keeps its default.
func New(names NameResolver, meta MetadataFetcher, fiat FiatOracle, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{names: names, meta: meta, fiat: fiat, logger: logger}
}

// NewChainEnricher wires the chain-backed collaborators: ENS reverse lookup,
// ERC721 name calls, and the Chainlink ETH/USD feed.
func NewChainEnricher(caller ContractCaller, logger *zap.Logger) *Enricher {
	return New(
		NewENSResolver(caller),
		NewTokenMetadata(caller),
		NewChainlinkOracle(caller),
		logger,
	)
}

// Enrich populates names, token metadata, and the fiat value. It blocks
// until all lookups complete.
func (e *Enricher) Enrich(ctx context.Context, sum *model.Summary) error {
	sum.FromName = sum.From.Hex()
	sum.ToName = sum.To.Hex()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		name := e.resolveName(gctx, sum.From)
		if name != "" {
			sum.FromName = name
		}
		return nil
	})

	g.Go(func() error {
		name := e.resolveName(gctx, sum.To)
		if name != "" {
			sum.ToName = name
		}
		return nil
	})

	g.Go(func() error {
		if e.meta == nil || sum.TokenContract == (common.Address{}) {
			return nil
		}
		name, err := e.meta.TokenName(gctx, sum.TokenContract)
		if err != nil {
			e.logger.Warn("token metadata fetch failed",
				zap.Error(err),
				zap.String("contract", sum.TokenContract.Hex()),
			)
			return nil
		}
		sum.TokenName = name
		return nil
	})

	g.Go(func() error {
		if e.fiat == nil || sum.IsSwap || !isNativeDenominated(sum) {
			return nil
		}
		value, err := e.fiat.FiatValue(gctx, sum.TotalPrice)
		if err != nil {
			e.logger.Warn("fiat rate fetch failed", zap.Error(err))
			return nil
		}
		sum.USDPrice = value
		return nil
	})

	return g.Wait()
}

func (e *Enricher) resolveName(ctx context.Context, addr common.Address) string {
	if e.names == nil {
		return ""
	}
	name, err := e.names.ResolveName(ctx, addr)
	if err != nil {
		e.logger.Debug("name resolution failed",
			zap.Error(err),
			zap.String("address", addr.Hex()),
		)
		return ""
	}
	return name
}

func isNativeDenominated(sum *model.Summary) bool {
	symbol := sum.Currency.Symbol
	return symbol == "ETH" || symbol == "WETH"
}
