package decode

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"salescope/internal/model"
	"salescope/internal/registry"
)

// DecodeLog decodes a sale log's data against the selected schema and
// returns the payload shape the schema is tagged with. Any failure here is
// fatal for the enclosing transaction parse.
func DecodeLog(schema *registry.Schema, entry model.LogEntry) (model.Payload, error) {
	if schema == nil {
		return nil, fmt.Errorf("no decode schema selected")
	}

	switch schema.Kind {
	case registry.PayloadListing:
		return decodeListing(schema, entry)
	case registry.PayloadSwap:
		return decodeSwap(schema, entry)
	case registry.PayloadPrice:
		return decodePrice(schema, entry)
	default:
		return nil, fmt.Errorf("unsupported payload kind: %d", schema.Kind)
	}
}

func decodeListing(schema *registry.Schema, entry model.LogEntry) (*model.ListingPayload, error) {
	parsed, err := registry.MarketplaceABI()
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}

	var out struct {
		OrderHash     [32]byte       `abi:"orderHash"`
		Recipient     common.Address `abi:"recipient"`
		Offer         []struct {
			ItemType   uint8
			Token      common.Address
			Identifier *big.Int
			Amount     *big.Int
		} `abi:"offer"`
		Consideration []struct {
			ItemType   uint8
			Token      common.Address
			Identifier *big.Int
			Amount     *big.Int
			Recipient  common.Address
		} `abi:"consideration"`
	}
	if err := parsed.UnpackIntoInterface(&out, schema.Event.Name, entry.Data); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", schema.Event.Name, err)
	}

	payload := &model.ListingPayload{
		OrderHash:     out.OrderHash,
		Recipient:     out.Recipient,
		Offer:         make([]model.OfferItem, 0, len(out.Offer)),
		Consideration: make([]model.ConsiderationItem, 0, len(out.Consideration)),
	}
	for _, item := range out.Offer {
		payload.Offer = append(payload.Offer, model.OfferItem{
			ItemType:   item.ItemType,
			Token:      item.Token,
			Identifier: item.Identifier,
			Amount:     item.Amount,
		})
	}
	for _, item := range out.Consideration {
		payload.Consideration = append(payload.Consideration, model.ConsiderationItem{
			ItemType:   item.ItemType,
			Token:      item.Token,
			Identifier: item.Identifier,
			Amount:     item.Amount,
			Recipient:  item.Recipient,
		})
	}
	return payload, nil
}

func decodeSwap(schema *registry.Schema, entry model.LogEntry) (*model.SwapPayload, error) {
	parsed, err := registry.MarketplaceABI()
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}

	var out struct {
		Status uint8    `abi:"status"`
		SwapID *big.Int `abi:"swapId"`
	}
	if err := parsed.UnpackIntoInterface(&out, schema.Event.Name, entry.Data); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", schema.Event.Name, err)
	}

	payload := &model.SwapPayload{
		SwapID: out.SwapID,
		Status: out.Status,
	}
	// Indexed layout: [sig, creator, time, counterpart].
	if len(entry.Topics) >= 2 {
		payload.Creator = common.BytesToAddress(entry.Topics[1].Bytes())
	}
	if len(entry.Topics) >= 4 {
		payload.Counterpart = common.BytesToAddress(entry.Topics[3].Bytes())
	}
	return payload, nil
}

func decodePrice(schema *registry.Schema, entry model.LogEntry) (*model.PricePayload, error) {
	parsed, err := registry.MarketplaceABI()
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}

	fields := make(map[string]interface{})
	if err := parsed.UnpackIntoMap(fields, schema.Event.Name, entry.Data); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", schema.Event.Name, err)
	}
	return &model.PricePayload{Fields: fields}, nil
}
