package parser

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"salescope/internal/model"
)

var (
	// Transfer(address,address,uint256); four topics means ERC721.
	transferSig = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	// TransferSingle(address,address,address,uint256,uint256)
	transferSingleSig = common.HexToHash("0xc3d58168c5ae7397731d063d5bbf3d657854427343f4c083240f7aacaa2d0f62")
)

// extractMovement records token transfers into the summary. Swap mode only
// tracks the monitored collection; sale mode tracks every transfer. Logs
// irrelevant to token movement are no-ops; this never aborts.
func extractMovement(sum *model.Summary, entry model.LogEntry, monitor common.Address) {
	if len(entry.Topics) == 0 {
		return
	}

	if sum.IsSwap {
		if entry.Topics[0] != transferSig || len(entry.Topics) != 4 || entry.Address != monitor {
			return
		}
		id := new(big.Int).SetBytes(entry.Topics[3].Bytes())
		if sum.Swap == nil {
			sum.Swap = &model.SwapState{}
		}
		sum.Swap.MonitorTokenID = id
		sum.TokenID = id
		sum.TokenContract = monitor
		if sum.TokenType == "" {
			sum.TokenType = model.TokenTypeERC721
		}
		return
	}

	switch {
	case entry.Topics[0] == transferSig && len(entry.Topics) == 4:
		id := new(big.Int).SetBytes(entry.Topics[3].Bytes())
		sum.Tokens = append(sum.Tokens, id)
		sum.TokenID = id
		sum.TokenContract = entry.Address
		if sum.TokenType == "" {
			sum.TokenType = model.TokenTypeERC721
		}

	case entry.Topics[0] == transferSingleSig && len(entry.Topics) == 4 && len(entry.Data) >= 64:
		id := new(big.Int).SetBytes(entry.Data[:32])
		amount := new(big.Int).SetBytes(entry.Data[32:64])
		sum.Tokens = append(sum.Tokens, amount)
		sum.TokenID = id
		sum.TokenContract = entry.Address
		if sum.TokenType == "" {
			sum.TokenType = model.TokenTypeERC1155
		}
	}
}
