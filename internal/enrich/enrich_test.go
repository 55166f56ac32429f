package enrich

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"salescope/internal/model"
	"salescope/internal/registry"
)

type stubNames map[common.Address]string

func (s stubNames) ResolveName(_ context.Context, addr common.Address) (string, error) {
	name, ok := s[addr]
	if !ok {
		return "", fmt.Errorf("no reverse record")
	}
	return name, nil
}

type stubMeta string

func (s stubMeta) TokenName(_ context.Context, _ common.Address) (string, error) {
	if s == "" {
		return "", fmt.Errorf("name call reverted")
	}
	return string(s), nil
}

type stubFiat string

func (s stubFiat) FiatValue(_ context.Context, _ float64) (string, error) {
	if s == "" {
		return "", fmt.Errorf("oracle unavailable")
	}
	return string(s), nil
}

func testSummary() *model.Summary {
	return &model.Summary{
		From:          common.HexToAddress("0x5555555555555555555555555555555555555555"),
		To:            common.HexToAddress("0x6666666666666666666666666666666666666666"),
		TokenContract: common.HexToAddress("0x4444444444444444444444444444444444444444"),
		TotalPrice:    1.5,
		Currency:      model.TrackCurrency(registry.Currency{Symbol: "ETH", Decimals: 18}),
	}
}

func TestEnrichFillsFields(t *testing.T) {
	sum := testSummary()
	names := stubNames{sum.From: "buyer.eth"}

	e := New(names, stubMeta("CryptoPunks"), stubFiat("4500.00"), zap.NewNop())
	if err := e.Enrich(context.Background(), sum); err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if sum.FromName != "buyer.eth" {
		t.Fatalf("from name mismatch: %s", sum.FromName)
	}
	if sum.ToName != sum.To.Hex() {
		t.Fatalf("unresolved name must fall back to hex: %s", sum.ToName)
	}
	if sum.TokenName != "CryptoPunks" {
		t.Fatalf("token name mismatch: %s", sum.TokenName)
	}
	if sum.USDPrice != "4500.00" {
		t.Fatalf("usd price mismatch: %s", sum.USDPrice)
	}
}

func TestEnrichDegradesOnFailures(t *testing.T) {
	sum := testSummary()

	e := New(stubNames{}, stubMeta(""), stubFiat(""), zap.NewNop())
	if err := e.Enrich(context.Background(), sum); err != nil {
		t.Fatalf("lookup failures must not fail enrichment: %v", err)
	}

	if sum.FromName != sum.From.Hex() || sum.ToName != sum.To.Hex() {
		t.Fatalf("names must default to hex: %s %s", sum.FromName, sum.ToName)
	}
	if sum.TokenName != "" || sum.USDPrice != "" {
		t.Fatalf("failed lookups must leave defaults: %q %q", sum.TokenName, sum.USDPrice)
	}
}

func TestEnrichSkipsFiatForSwapsAndTokens(t *testing.T) {
	swap := testSummary()
	swap.IsSwap = true

	e := New(nil, nil, stubFiat("4500.00"), zap.NewNop())
	if err := e.Enrich(context.Background(), swap); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if swap.USDPrice != "" {
		t.Fatalf("swaps must not get a fiat value: %s", swap.USDPrice)
	}

	erc20 := testSummary()
	erc20.Currency = model.TrackCurrency(registry.Currency{Symbol: "USDC", Decimals: 6})
	if err := e.Enrich(context.Background(), erc20); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if erc20.USDPrice != "" {
		t.Fatalf("non-native sales must not get an eth fiat value: %s", erc20.USDPrice)
	}
}

func TestEnrichNilCollaborators(t *testing.T) {
	sum := testSummary()

	e := New(nil, nil, nil, zap.NewNop())
	if err := e.Enrich(context.Background(), sum); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if sum.FromName != sum.From.Hex() {
		t.Fatalf("from name default mismatch: %s", sum.FromName)
	}
}
