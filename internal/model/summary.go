package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"salescope/internal/registry"
)

// TokenType identifies the token standard observed during the scan.
type TokenType string

const (
	TokenTypeERC721  TokenType = "ERC721"
	TokenTypeERC1155 TokenType = "ERC1155"
)

// CurrencyState tracks the transaction's payment currency. It starts in the
// tracking state and may transition to frozen exactly once; a frozen state
// never accepts further observations.
type CurrencyState struct {
	registry.Currency
	frozen bool
}

// TrackCurrency starts currency tracking at an initial currency.
func TrackCurrency(c registry.Currency) CurrencyState {
	return CurrencyState{Currency: c}
}

// Observe replaces the current currency unless the state is frozen.
func (s *CurrencyState) Observe(c registry.Currency) bool {
	if s.frozen {
		return false
	}
	s.Currency = c
	return true
}

// Freeze stops further currency updates. There is no reverse transition.
func (s *CurrencyState) Freeze() {
	s.frozen = true
}

// Frozen reports whether observations are still accepted.
func (s *CurrencyState) Frozen() bool {
	return s.frozen
}

// SwapState is the swap-mode sub-record.
type SwapState struct {
	SwapID         *big.Int       `json:"swap_id,omitempty"`
	MonitorTokenID *big.Int       `json:"monitor_token_id,omitempty"`
	Counterpart    common.Address `json:"counterpart,omitempty"`
}

// Summary is the aggregate sale/swap record. It is created empty at scan
// start, mutated exclusively by the parser and its delegates during the
// scan, and finalized after the scan completes. An aborted scan produces no
// Summary at all.
type Summary struct {
	Market        registry.Market `json:"-"`
	MarketName    string          `json:"market"`
	MarketAddress common.Address  `json:"market_address"`
	IsSwap        bool            `json:"is_swap"`
	IsSweep       bool            `json:"is_sweep"`

	Currency CurrencyState `json:"currency"`

	Tokens        []*big.Int     `json:"tokens"`
	TokenID       *big.Int       `json:"token_id,omitempty"`
	TokenContract common.Address `json:"token_contract"`
	TokenType     TokenType      `json:"token_type,omitempty"`

	MarketList []string  `json:"market_list"`
	Prices     []float64 `json:"prices"`
	TotalPrice float64   `json:"total_price"`

	Swap *SwapState `json:"swap,omitempty"`

	// Populated only after the scan completes.
	Quantity        uint64         `json:"quantity"`
	To              common.Address `json:"to"`
	From            common.Address `json:"from"`
	ToName          string         `json:"to_name,omitempty"`
	FromName        string         `json:"from_name,omitempty"`
	TokenName       string         `json:"token_name,omitempty"`
	Sweeper         string         `json:"sweeper,omitempty"`
	USDPrice        string         `json:"usd_price,omitempty"`
	TransactionHash string         `json:"transaction_hash"`
}

// NewSummary builds the scan-time record for a recipient market. Sweeps
// freeze the currency at the default immediately; swap transactions start
// with an empty swap sub-record.
func NewSummary(market registry.Market, marketAddress common.Address, defaultCurrency registry.Currency) *Summary {
	s := &Summary{
		Market:        market,
		MarketName:    market.Name,
		MarketAddress: marketAddress,
		IsSwap:        market.IsSwap,
		IsSweep:       market.IsAggregator,
		Currency:      TrackCurrency(defaultCurrency),
		Tokens:        make([]*big.Int, 0, 4),
		MarketList:    make([]string, 0, 4),
		Prices:        make([]float64, 0, 4),
	}
	if s.IsSweep {
		s.Currency.Freeze()
	}
	if s.IsSwap {
		s.Swap = &SwapState{}
	}
	return s
}

// PendingToken reports whether exactly one recorded token is still waiting
// for a price. Prices are only credited in this state, which keeps
// len(Prices) == len(MarketList) <= len(Tokens) throughout the scan.
func (s *Summary) PendingToken() bool {
	return len(s.MarketList)+1 == len(s.Tokens)
}

// CreditPrice attributes a scaled price to a market. Returns false without
// mutating anything when no token is pending.
func (s *Summary) CreditPrice(marketName string, scaled float64) bool {
	if !s.PendingToken() {
		return false
	}
	s.Prices = append(s.Prices, scaled)
	s.MarketList = append(s.MarketList, marketName)
	s.TotalPrice += scaled
	return true
}
