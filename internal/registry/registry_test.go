package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestDefaultRegistryLookups(t *testing.T) {
	reg, err := NewDefault()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}

	market, ok := reg.MarketByAddress(common.HexToAddress("0x00000000006c3852cbEf3e08E8df289169ede581"))
	if !ok || market.Name != "OpenSea" {
		t.Fatalf("seaport lookup mismatch: %+v", market)
	}
	if market.Schema == nil || market.Schema.Kind != PayloadListing {
		t.Fatalf("seaport schema mismatch: %+v", market.Schema)
	}

	x2y2, ok := reg.MarketByAddress(common.HexToAddress("0x74312363e45DCaBA76c59ec49a7Aa8A65a67EeD3"))
	if !ok || x2y2.PriceField != "amount" {
		t.Fatalf("x2y2 price field mismatch: %+v", x2y2)
	}

	trader, ok := reg.MarketByAddress(common.HexToAddress("0x657E383EdB9A7407E468acBCc9Fe4C9730c7C275"))
	if !ok || !trader.IsSwap {
		t.Fatalf("nfttrader swap flag mismatch: %+v", trader)
	}

	gem, ok := reg.MarketByAddress(common.HexToAddress("0x83C8F28c26bF6aaca652Df1DbBE0e1b56F8baBa2"))
	if !ok || !gem.IsAggregator || gem.Schema != nil {
		t.Fatalf("gem aggregator mismatch: %+v", gem)
	}

	if _, ok := reg.MarketByAddress(common.HexToAddress("0x01")); ok {
		t.Fatalf("unknown address must miss")
	}

	weth, ok := reg.CurrencyByAddress(common.HexToAddress("0xC02aaa39b223Fe8D0a0e5C4F27eAD9083C756Cc2"))
	if !ok || weth.Symbol != "WETH" || weth.Decimals != 18 {
		t.Fatalf("weth lookup mismatch: %+v", weth)
	}

	if def := reg.DefaultCurrency(); def.Symbol != "ETH" || def.Decimals != 18 {
		t.Fatalf("default currency mismatch: %+v", def)
	}
}

func TestDefaultRegistrySaleSignatures(t *testing.T) {
	reg, err := NewDefault()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	parsed, err := MarketplaceABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	for _, name := range []string{"OrderFulfilled", "TakerBid", "TakerAsk", "EvProfit", "swapEvent"} {
		if !reg.IsSaleSignature(parsed.Events[name].ID) {
			t.Fatalf("%s must be a sale signature", name)
		}
	}

	transferSig := common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	if reg.IsSaleSignature(transferSig) {
		t.Fatalf("Transfer must not be a sale signature")
	}

	if len(reg.SaleSignatures()) != 5 {
		t.Fatalf("signature count mismatch: %d", len(reg.SaleSignatures()))
	}
	if len(reg.MarketAddresses()) != 7 {
		t.Fatalf("market count mismatch: %d", len(reg.MarketAddresses()))
	}
}

func TestSchemaByName(t *testing.T) {
	cases := []struct {
		name string
		kind PayloadKind
	}{
		{"listing", PayloadListing},
		{"seaport", PayloadListing},
		{"takerbid", PayloadPrice},
		{"takerask", PayloadPrice},
		{"evprofit", PayloadPrice},
		{"swap", PayloadSwap},
		{"SWAP", PayloadSwap},
	}
	for _, tc := range cases {
		schema, err := SchemaByName(tc.name)
		if err != nil {
			t.Fatalf("schema %s: %v", tc.name, err)
		}
		if schema.Kind != tc.kind {
			t.Fatalf("schema %s kind mismatch: %d", tc.name, schema.Kind)
		}
	}

	schema, err := SchemaByName("none")
	if err != nil || schema != nil {
		t.Fatalf("none must resolve to a nil schema: %v %v", schema, err)
	}

	if _, err := SchemaByName("bogus"); err == nil {
		t.Fatalf("expected error for unknown schema name")
	}
}

func TestLoadMergesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	content := `markets:
  - address: "0x1111111111111111111111111111111111111111"
    name: "Blur"
    schema: "evprofit"
    price_field: "amount"
  - address: "0x83C8F28c26bF6aaca652Df1DbBE0e1b56F8baBa2"
    name: "GemV2"
    aggregator: true
currencies:
  - address: "0x2222222222222222222222222222222222222222"
    symbol: "APE"
    decimals: 18
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	blur, ok := reg.MarketByAddress(common.HexToAddress("0x1111111111111111111111111111111111111111"))
	if !ok || blur.Name != "Blur" || blur.PriceField != "amount" {
		t.Fatalf("added market mismatch: %+v", blur)
	}
	if blur.Schema == nil || blur.Schema.Kind != PayloadPrice {
		t.Fatalf("added market schema mismatch: %+v", blur.Schema)
	}

	gem, ok := reg.MarketByAddress(common.HexToAddress("0x83C8F28c26bF6aaca652Df1DbBE0e1b56F8baBa2"))
	if !ok || gem.Name != "GemV2" || !gem.IsAggregator {
		t.Fatalf("overridden market mismatch: %+v", gem)
	}

	ape, ok := reg.CurrencyByAddress(common.HexToAddress("0x2222222222222222222222222222222222222222"))
	if !ok || ape.Symbol != "APE" {
		t.Fatalf("added currency mismatch: %+v", ape)
	}

	// Untouched defaults survive the merge.
	if _, ok := reg.MarketByAddress(common.HexToAddress("0x00000000006c3852cbEf3e08E8df289169ede581")); !ok {
		t.Fatalf("default market lost during merge")
	}
}

func TestLoadRejectsBadEntries(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad_address.yaml")
	if err := os.WriteFile(bad, []byte("markets:\n  - address: \"nope\"\n    name: \"X\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected error for invalid address")
	}

	noName := filepath.Join(dir, "no_name.yaml")
	if err := os.WriteFile(noName, []byte("markets:\n  - address: \"0x1111111111111111111111111111111111111111\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(noName); err == nil {
		t.Fatalf("expected error for missing name")
	}
}
