package registry

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// PayloadKind tags the shape a market schema decodes into. The three kinds
// are mutually exclusive; classification happens at schema selection, never
// by probing decoded fields.
type PayloadKind int

const (
	PayloadListing PayloadKind = iota + 1
	PayloadSwap
	PayloadPrice
)

// Schema is a market's log decoder: one ABI event plus the payload kind its
// decoded form belongs to.
type Schema struct {
	Kind  PayloadKind
	Event abi.Event
}

// Market describes a tracked marketplace contract. Schema may be nil for
// aggregator front-doors whose settlement logs are emitted by the underlying
// markets; a sale event detected against a nil schema aborts the parse.
type Market struct {
	Name         string
	Schema       *Schema
	IsSwap       bool
	IsAggregator bool
	// PriceField overrides the decoded field the generic sale decoder reads.
	// Empty means "price". X2Y2's EvProfit emits its settlement as "amount".
	PriceField string
}

// Currency describes a payment token.
type Currency struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Registry holds the immutable lookup tables the parser classifies against.
// Loaded once at startup; read-only for the lifetime of a parse.
type Registry struct {
	markets    map[common.Address]Market
	currencies map[common.Address]Currency
	saleSigs   map[common.Hash]struct{}
	defaultCur Currency
}

// MarketByAddress returns the market descriptor for a contract address.
func (r *Registry) MarketByAddress(addr common.Address) (Market, bool) {
	m, ok := r.markets[addr]
	return m, ok
}

// CurrencyByAddress returns the currency descriptor for a token address.
func (r *Registry) CurrencyByAddress(addr common.Address) (Currency, bool) {
	c, ok := r.currencies[addr]
	return c, ok
}

// IsSaleSignature reports whether topic0 identifies a known settlement event.
func (r *Registry) IsSaleSignature(topic0 common.Hash) bool {
	_, ok := r.saleSigs[topic0]
	return ok
}

// DefaultCurrency is the currency assumed before any currency log is seen.
func (r *Registry) DefaultCurrency() Currency {
	return r.defaultCur
}

// MarketAddresses returns every registered market address, for log filtering.
func (r *Registry) MarketAddresses() []common.Address {
	out := make([]common.Address, 0, len(r.markets))
	for addr := range r.markets {
		out = append(out, addr)
	}
	return out
}

// SaleSignatures returns every registered settlement topic0.
func (r *Registry) SaleSignatures() []common.Hash {
	out := make([]common.Hash, 0, len(r.saleSigs))
	for sig := range r.saleSigs {
		out = append(out, sig)
	}
	return out
}
