package registry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Mainnet contract addresses for the built-in market and currency tables.
var (
	seaportV11Address = common.HexToAddress("0x00000000006c3852cbEf3e08E8df289169ede581")
	seaportV15Address = common.HexToAddress("0x00000000000000ADc04C56Bf30aC9d3c0aAF14dC")
	looksRareAddress  = common.HexToAddress("0x59728544B08AB483533076417FbBB2fD0B17CE3a")
	x2y2Address       = common.HexToAddress("0x74312363e45DCaBA76c59ec49a7Aa8A65a67EeD3")
	nftTraderAddress  = common.HexToAddress("0x657E383EdB9A7407E468acBCc9Fe4C9730c7C275")
	gemAddress        = common.HexToAddress("0x83C8F28c26bF6aaca652Df1DbBE0e1b56F8baBa2")
	genieAddress      = common.HexToAddress("0x0a267cF51EF038fC00E71801F5a524aec06e4f07")

	wethAddress = common.HexToAddress("0xC02aaa39b223Fe8D0a0e5C4F27eAD9083C756Cc2")
	usdcAddress = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	daiAddress  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

// NewDefault builds the built-in mainnet registry.
func NewDefault() (*Registry, error) {
	listing, err := SchemaByName("listing")
	if err != nil {
		return nil, err
	}
	takerBid, err := SchemaByName("takerbid")
	if err != nil {
		return nil, err
	}
	evProfit, err := SchemaByName("evprofit")
	if err != nil {
		return nil, err
	}
	swap, err := SchemaByName("swap")
	if err != nil {
		return nil, err
	}

	r := &Registry{
		markets: map[common.Address]Market{
			seaportV11Address: {Name: "OpenSea", Schema: listing},
			seaportV15Address: {Name: "OpenSea", Schema: listing},
			looksRareAddress:  {Name: "LooksRare", Schema: takerBid},
			x2y2Address:       {Name: "X2Y2", Schema: evProfit, PriceField: "amount"},
			nftTraderAddress:  {Name: "NFTTrader", Schema: swap, IsSwap: true},
			gemAddress:        {Name: "Gem", IsAggregator: true},
			genieAddress:      {Name: "Genie", IsAggregator: true},
		},
		currencies: map[common.Address]Currency{
			wethAddress: {Symbol: "WETH", Decimals: 18},
			usdcAddress: {Symbol: "USDC", Decimals: 6},
			daiAddress:  {Symbol: "DAI", Decimals: 18},
		},
		defaultCur: Currency{Symbol: "ETH", Decimals: 18},
	}

	if err := r.rebuildSaleSignatures(); err != nil {
		return nil, err
	}
	return r, nil
}

// SchemaByName resolves a schema name used in registry config files.
func SchemaByName(name string) (*Schema, error) {
	parsed, err := MarketplaceABI()
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "listing", "seaport":
		return &Schema{Kind: PayloadListing, Event: parsed.Events["OrderFulfilled"]}, nil
	case "takerbid":
		return &Schema{Kind: PayloadPrice, Event: parsed.Events["TakerBid"]}, nil
	case "takerask":
		return &Schema{Kind: PayloadPrice, Event: parsed.Events["TakerAsk"]}, nil
	case "evprofit":
		return &Schema{Kind: PayloadPrice, Event: parsed.Events["EvProfit"]}, nil
	case "swap", "swapevent":
		return &Schema{Kind: PayloadSwap, Event: parsed.Events["swapEvent"]}, nil
	default:
		return nil, fmt.Errorf("unknown schema name: %s", name)
	}
}

// rebuildSaleSignatures derives the settlement topic0 set from every schema
// event plus TakerAsk, which shares LooksRare's TakerBid layout.
func (r *Registry) rebuildSaleSignatures() error {
	parsed, err := MarketplaceABI()
	if err != nil {
		return fmt.Errorf("parse marketplace abi: %w", err)
	}

	r.saleSigs = make(map[common.Hash]struct{})
	for _, name := range []string{"OrderFulfilled", "TakerBid", "TakerAsk", "EvProfit", "swapEvent"} {
		event, ok := parsed.Events[name]
		if !ok {
			return fmt.Errorf("missing event in marketplace abi: %s", name)
		}
		r.saleSigs[event.ID] = struct{}{}
	}
	return nil
}
