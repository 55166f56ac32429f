package decode

import (
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"salescope/internal/model"
	"salescope/internal/registry"
)

var (
	testCollection = common.HexToAddress("0x4444444444444444444444444444444444444444")
	testSeller     = common.HexToAddress("0x5555555555555555555555555555555555555555")
	testBuyer      = common.HexToAddress("0x6666666666666666666666666666666666666666")
)

type spentItem struct {
	ItemType   uint8
	Token      common.Address
	Identifier *big.Int
	Amount     *big.Int
}

type receivedItem struct {
	ItemType   uint8
	Token      common.Address
	Identifier *big.Int
	Amount     *big.Int
	Recipient  common.Address
}

func mustSchema(t *testing.T, name string) *registry.Schema {
	t.Helper()
	schema, err := registry.SchemaByName(name)
	if err != nil {
		t.Fatalf("schema %s: %v", name, err)
	}
	return schema
}

func TestDecodeLogListing(t *testing.T) {
	schema := mustSchema(t, "listing")

	data, err := schema.Event.Inputs.NonIndexed().Pack(
		[32]byte{0xab},
		testBuyer,
		[]spentItem{{ItemType: 2, Token: testCollection, Identifier: big.NewInt(42), Amount: big.NewInt(1)}},
		[]receivedItem{{ItemType: 0, Identifier: big.NewInt(0), Amount: big.NewInt(1000), Recipient: testSeller}},
	)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	payload, err := DecodeLog(schema, model.LogEntry{
		Topics: []common.Hash{
			schema.Event.ID,
			common.BytesToHash(testSeller.Bytes()),
			common.BytesToHash(common.Address{}.Bytes()),
		},
		Data: data,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	listing, ok := payload.(*model.ListingPayload)
	if !ok {
		t.Fatalf("payload type mismatch: %T", payload)
	}
	if listing.Recipient != testBuyer {
		t.Fatalf("recipient mismatch: %s", listing.Recipient.Hex())
	}
	if len(listing.Offer) != 1 || listing.Offer[0].Identifier.Int64() != 42 {
		t.Fatalf("offer mismatch: %+v", listing.Offer)
	}
	if len(listing.Consideration) != 1 || listing.Consideration[0].Amount.Int64() != 1000 {
		t.Fatalf("consideration mismatch: %+v", listing.Consideration)
	}
}

func TestDecodeLogSwap(t *testing.T) {
	schema := mustSchema(t, "swap")

	data, err := schema.Event.Inputs.NonIndexed().Pack(uint8(1), big.NewInt(123))
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	counterpart := common.HexToAddress("0x7777777777777777777777777777777777777777")
	payload, err := DecodeLog(schema, model.LogEntry{
		Topics: []common.Hash{
			schema.Event.ID,
			common.BytesToHash(testSeller.Bytes()),
			common.BigToHash(big.NewInt(1700000000)),
			common.BytesToHash(counterpart.Bytes()),
		},
		Data: data,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	swap, ok := payload.(*model.SwapPayload)
	if !ok {
		t.Fatalf("payload type mismatch: %T", payload)
	}
	if swap.SwapID.Int64() != 123 || swap.Status != 1 {
		t.Fatalf("swap fields mismatch: %+v", swap)
	}
	if swap.Creator != testSeller || swap.Counterpart != counterpart {
		t.Fatalf("swap addresses mismatch: %+v", swap)
	}
}

func TestDecodeLogPrice(t *testing.T) {
	schema := mustSchema(t, "evprofit")

	data, err := schema.Event.Inputs.NonIndexed().Pack(
		[32]byte{0x01},
		common.Address{},
		testSeller,
		big.NewInt(5000),
	)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	payload, err := DecodeLog(schema, model.LogEntry{
		Topics: []common.Hash{schema.Event.ID},
		Data:   data,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	price, ok := payload.(*model.PricePayload)
	if !ok {
		t.Fatalf("payload type mismatch: %T", payload)
	}
	amount, err := price.Amount("amount")
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	if amount.Int64() != 5000 {
		t.Fatalf("amount mismatch: %s", amount)
	}
	if _, err := price.Amount("missing"); err == nil {
		t.Fatalf("expected error for missing field")
	}
}

func TestDecodeLogNilSchema(t *testing.T) {
	if _, err := DecodeLog(nil, model.LogEntry{}); err == nil {
		t.Fatalf("expected error for nil schema")
	}
}

func TestDecodeLogBadData(t *testing.T) {
	schema := mustSchema(t, "listing")
	if _, err := DecodeLog(schema, model.LogEntry{Data: []byte{0xde, 0xad}}); err == nil {
		t.Fatalf("expected error for truncated data")
	}
}

func TestSettlementPriceListing(t *testing.T) {
	payload := &model.ListingPayload{
		Offer: []model.OfferItem{
			{ItemType: 2, Token: testCollection, Identifier: big.NewInt(1), Amount: big.NewInt(1)},
		},
		Consideration: []model.ConsiderationItem{
			{ItemType: 0, Amount: big.NewInt(900)},
			{ItemType: 0, Amount: big.NewInt(100)},
			{ItemType: 2, Token: testCollection, Amount: big.NewInt(1)},
		},
	}

	total, ok := SettlementPrice(payload)
	if !ok {
		t.Fatalf("expected settlement price")
	}
	if total.Int64() != 1000 {
		t.Fatalf("total mismatch: %s", total)
	}
}

func TestSettlementPriceAcceptedBid(t *testing.T) {
	payload := &model.ListingPayload{
		Offer: []model.OfferItem{
			{ItemType: 1, Token: common.HexToAddress("0xC02aaa39b223Fe8D0a0e5C4F27eAD9083C756Cc2"), Amount: big.NewInt(2500)},
		},
		Consideration: []model.ConsiderationItem{
			{ItemType: 2, Token: testCollection, Identifier: big.NewInt(7), Amount: big.NewInt(1)},
		},
	}

	total, ok := SettlementPrice(payload)
	if !ok {
		t.Fatalf("expected settlement price")
	}
	if total.Int64() != 2500 {
		t.Fatalf("total mismatch: %s", total)
	}
}

func TestSettlementPriceEmpty(t *testing.T) {
	payload := &model.ListingPayload{
		Offer: []model.OfferItem{
			{ItemType: 2, Token: testCollection, Identifier: big.NewInt(1), Amount: big.NewInt(1)},
		},
	}

	if _, ok := SettlementPrice(payload); ok {
		t.Fatalf("expected no settlement price")
	}
}

func TestScaleAmount(t *testing.T) {
	oneAndHalf := new(big.Int).Mul(big.NewInt(15), new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil))
	if got := ScaleAmount(oneAndHalf, 18); math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("scale mismatch: %f", got)
	}
	if got := ScaleAmount(big.NewInt(1500000), 6); math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("scale mismatch: %f", got)
	}
	if got := ScaleAmount(nil, 18); got != 0 {
		t.Fatalf("nil amount must scale to zero: %f", got)
	}
}
