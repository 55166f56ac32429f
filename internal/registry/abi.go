package registry

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const marketplaceABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "offerer", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "zone", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "recipient", "type": "address"},
      {
        "components": [
          {"internalType": "uint8", "name": "itemType", "type": "uint8"},
          {"internalType": "address", "name": "token", "type": "address"},
          {"internalType": "uint256", "name": "identifier", "type": "uint256"},
          {"internalType": "uint256", "name": "amount", "type": "uint256"}
        ],
        "indexed": false, "internalType": "struct SpentItem[]", "name": "offer", "type": "tuple[]"
      },
      {
        "components": [
          {"internalType": "uint8", "name": "itemType", "type": "uint8"},
          {"internalType": "address", "name": "token", "type": "address"},
          {"internalType": "uint256", "name": "identifier", "type": "uint256"},
          {"internalType": "uint256", "name": "amount", "type": "uint256"},
          {"internalType": "address payable", "name": "recipient", "type": "address"}
        ],
        "indexed": false, "internalType": "struct ReceivedItem[]", "name": "consideration", "type": "tuple[]"
      }
    ],
    "name": "OrderFulfilled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "orderNonce", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "strategy", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "currency", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "collection", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"}
    ],
    "name": "TakerBid",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "orderNonce", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "strategy", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "currency", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "collection", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"}
    ],
    "name": "TakerAsk",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "itemHash", "type": "bytes32"},
      {"indexed": false, "internalType": "address", "name": "currency", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "EvProfit",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "creator", "type": "address"},
      {"indexed": true, "internalType": "uint256", "name": "time", "type": "uint256"},
      {"indexed": false, "internalType": "uint8", "name": "status", "type": "uint8"},
      {"indexed": false, "internalType": "uint256", "name": "swapId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "counterpart", "type": "address"}
    ],
    "name": "swapEvent",
    "type": "event"
  }
]`

var (
	marketplaceABI     abi.ABI
	marketplaceABIOnce sync.Once
	marketplaceABIErr  error
)

// MarketplaceABI returns the parsed marketplace event ABI.
func MarketplaceABI() (abi.ABI, error) {
	marketplaceABIOnce.Do(func() {
		marketplaceABI, marketplaceABIErr = abi.JSON(strings.NewReader(marketplaceABIJSON))
	})
	return marketplaceABI, marketplaceABIErr
}
