package decode

import (
	"math/big"

	"salescope/internal/model"
)

// SettlementPrice extracts the executed payment from a fulfilled order.
// When the offer side carries the asset, payment is the sum of fungible
// consideration items; when the offer side carries the payment (an accepted
// bid), the offer amounts are summed instead. A fulfillment with no fungible
// settlement returns ok=false: such logs are skipped, not fatal.
func SettlementPrice(payload *model.ListingPayload) (*big.Int, bool) {
	offerHasAsset := false
	for _, item := range payload.Offer {
		if item.ItemType > model.ItemTypeERC20 {
			offerHasAsset = true
			break
		}
	}

	total := new(big.Int)
	if offerHasAsset {
		for _, item := range payload.Consideration {
			if item.ItemType <= model.ItemTypeERC20 && item.Amount != nil {
				total.Add(total, item.Amount)
			}
		}
	} else {
		for _, item := range payload.Offer {
			if item.ItemType <= model.ItemTypeERC20 && item.Amount != nil {
				total.Add(total, item.Amount)
			}
		}
	}

	if total.Sign() == 0 {
		return nil, false
	}
	return total, true
}
