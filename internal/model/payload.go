package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Payload is the tagged union of decoded sale-log shapes. Exactly one
// concrete type is produced per decode, chosen by the schema's kind.
type Payload interface {
	payloadShape()
}

// Seaport item types 0 and 1 are native coin and ERC20; 2 and up are NFTs.
const (
	ItemTypeNative uint8 = 0
	ItemTypeERC20  uint8 = 1
)

// OfferItem is one asset on the offer side of a fulfilled order.
type OfferItem struct {
	ItemType   uint8
	Token      common.Address
	Identifier *big.Int
	Amount     *big.Int
}

// ConsiderationItem is one asset owed on the consideration side.
type ConsiderationItem struct {
	ItemType   uint8
	Token      common.Address
	Identifier *big.Int
	Amount     *big.Int
	Recipient  common.Address
}

// ListingPayload is a decoded listing/offer fulfillment.
type ListingPayload struct {
	OrderHash     [32]byte
	Recipient     common.Address
	Offer         []OfferItem
	Consideration []ConsiderationItem
}

func (*ListingPayload) payloadShape() {}

// SwapPayload is a decoded swap settlement event.
type SwapPayload struct {
	SwapID      *big.Int
	Status      uint8
	Creator     common.Address
	Counterpart common.Address
}

func (*SwapPayload) payloadShape() {}

// PricePayload holds the non-indexed fields of a plain settlement event.
type PricePayload struct {
	Fields map[string]interface{}
}

func (*PricePayload) payloadShape() {}

// Amount returns the named field as a big integer.
func (p *PricePayload) Amount(field string) (*big.Int, error) {
	value, ok := p.Fields[field]
	if !ok {
		return nil, fmt.Errorf("missing field %q in decoded payload", field)
	}
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("field %q has unsupported type %T", field, value)
	}
}
