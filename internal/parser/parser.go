package parser

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"salescope/internal/decode"
	"salescope/internal/model"
	"salescope/internal/registry"
)

// Enricher fills the post-scan lookup fields of a finalized summary.
type Enricher interface {
	Enrich(ctx context.Context, sum *model.Summary) error
}

// Config holds parse-time settings.
type Config struct {
	// MonitorCollection is the NFT contract tracked in swap mode.
	MonitorCollection common.Address
}

// Parser classifies a transaction's logs and accumulates one sale/swap
// summary. Each Parse owns its summary exclusively; no locking is needed.
type Parser struct {
	cfg      Config
	reg      *registry.Registry
	lookup   decode.TokenLookup
	enricher Enricher
	logger   *zap.Logger
}

// New builds a Parser. lookup and enricher may be nil; a nil lookup makes
// unresolved swaps fatal and a nil enricher skips external enrichment.
func New(cfg Config, reg *registry.Registry, lookup decode.TokenLookup, enricher Enricher, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		cfg:      cfg,
		reg:      reg,
		lookup:   lookup,
		enricher: enricher,
		logger:   logger,
	}
}

// Parse folds the receipt's logs, in order, into a summary. A nil summary
// with a nil error means the transaction is not applicable: the recipient is
// untracked, a sale log could not be decoded, or finalization found nothing
// to report. Callers must not retry.
func (p *Parser) Parse(ctx context.Context, rcpt model.Receipt) (*model.Summary, error) {
	market, ok := p.reg.MarketByAddress(rcpt.To)
	if !ok {
		p.logger.Debug("recipient is not a tracked market", zap.String("to", rcpt.To.Hex()))
		return nil, nil
	}

	sum := model.NewSummary(market, rcpt.To, p.reg.DefaultCurrency())

	for _, entry := range rcpt.Logs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !p.step(ctx, sum, rcpt, entry) {
			return nil, nil
		}
	}

	return p.finalize(ctx, sum, rcpt)
}

// step processes one log. A false return aborts the whole parse.
func (p *Parser) step(ctx context.Context, sum *model.Summary, rcpt model.Receipt, entry model.LogEntry) bool {
	if cur, ok := p.reg.CurrencyByAddress(entry.Address); ok {
		sum.Currency.Observe(cur)
	}

	extractMovement(sum, entry, p.cfg.MonitorCollection)

	if len(entry.Topics) == 0 || !p.reg.IsSaleSignature(entry.Topics[0]) {
		return true
	}

	// The recipient's own logs decode with the recipient's schema;
	// fan-out logs from other known markets use that market's schema.
	var market registry.Market
	if entry.Address == sum.MarketAddress {
		market = sum.Market
	} else {
		m, ok := p.reg.MarketByAddress(entry.Address)
		if !ok {
			return true
		}
		market = m
	}

	if market.Schema == nil {
		p.logger.Warn("sale event has no decode schema",
			zap.String("market", market.Name),
			zap.String("tx", rcpt.TxHash.Hex()),
		)
		return false
	}

	payload, err := decode.DecodeLog(market.Schema, entry)
	if err != nil {
		p.logger.Warn("decode sale log",
			zap.Error(err),
			zap.String("market", market.Name),
			zap.String("tx", rcpt.TxHash.Hex()),
		)
		return false
	}

	switch pl := payload.(type) {
	case *model.ListingPayload:
		raw, ok := decode.SettlementPrice(pl)
		if !ok {
			p.logger.Debug("listing log carries no settlement price",
				zap.String("market", market.Name),
				zap.String("tx", rcpt.TxHash.Hex()),
			)
			return true
		}
		sum.CreditPrice(market.Name, decode.ScaleAmount(raw, sum.Currency.Decimals))

	case *model.SwapPayload:
		if sum.Swap == nil {
			sum.Swap = &model.SwapState{}
		}
		sum.Swap.SwapID = pl.SwapID
		sum.Swap.Counterpart = pl.Counterpart
		id, err := decode.ResolveMonitorToken(ctx, p.lookup, rcpt.TxHash, p.cfg.MonitorCollection, sum.Swap.MonitorTokenID)
		if err != nil {
			p.logger.Warn("resolve monitored swap token",
				zap.Error(err),
				zap.String("tx", rcpt.TxHash.Hex()),
			)
			return false
		}
		sum.Swap.MonitorTokenID = id

	case *model.PricePayload:
		if !sum.PendingToken() {
			return true
		}
		field := "price"
		if market.PriceField != "" {
			field = market.PriceField
		}
		raw, err := pl.Amount(field)
		if err != nil {
			p.logger.Warn("read settlement amount",
				zap.Error(err),
				zap.String("market", market.Name),
				zap.String("tx", rcpt.TxHash.Hex()),
			)
			return false
		}
		sum.CreditPrice(market.Name, decode.ScaleAmount(raw, sum.Currency.Decimals))
	}

	return true
}

func (p *Parser) finalize(ctx context.Context, sum *model.Summary, rcpt model.Receipt) (*model.Summary, error) {
	sum.Quantity = quantity(sum)

	if !sum.IsSwap && sum.Quantity == 0 {
		p.logger.Warn("no tokens found", zap.String("tx", rcpt.TxHash.Hex()))
		return nil, nil
	}
	if sum.IsSwap && (sum.Swap == nil || sum.Swap.MonitorTokenID == nil) {
		p.logger.Warn("swap without monitored token", zap.String("tx", rcpt.TxHash.Hex()))
		return nil, nil
	}

	sum.To = rcpt.To
	sum.From = rcpt.From
	sum.TransactionHash = rcpt.TxHash.Hex()
	if sum.IsSweep {
		sum.Sweeper = rcpt.From.Hex()
	}

	if p.enricher != nil {
		if err := p.enricher.Enrich(ctx, sum); err != nil {
			return nil, err
		}
	}

	return sum, nil
}

func quantity(sum *model.Summary) uint64 {
	if sum.TokenType == model.TokenTypeERC721 {
		return uint64(len(sum.Tokens))
	}
	var total uint64
	for _, amount := range sum.Tokens {
		if amount != nil && amount.IsUint64() {
			total += amount.Uint64()
		}
	}
	return total
}
