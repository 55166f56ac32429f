package decode

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenLookup resolves which token of the monitored collection moved inside
// a transaction. Backed by a receipt fetch when the scan itself has not seen
// the transfer yet.
type TokenLookup interface {
	TransferredTokenID(ctx context.Context, txHash common.Hash, collection common.Address) (*big.Int, error)
}

// ResolveMonitorToken returns the monitored token id for a swap. The id
// already observed by the scan wins; otherwise one external lookup is
// performed. Failure to resolve is fatal for the transaction parse.
func ResolveMonitorToken(ctx context.Context, lookup TokenLookup, txHash common.Hash, collection common.Address, observed *big.Int) (*big.Int, error) {
	if observed != nil {
		return observed, nil
	}
	if lookup == nil {
		return nil, fmt.Errorf("no token lookup available")
	}
	if collection == (common.Address{}) {
		return nil, fmt.Errorf("no monitored collection configured")
	}

	id, err := lookup.TransferredTokenID(ctx, txHash, collection)
	if err != nil {
		return nil, fmt.Errorf("lookup monitored token: %w", err)
	}
	if id == nil {
		return nil, fmt.Errorf("no transfer of monitored collection in %s", txHash.Hex())
	}
	return id, nil
}
