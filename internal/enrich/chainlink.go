package enrich

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Chainlink ETH/USD aggregator on mainnet; answers carry 8 decimals.
var ethUsdFeedAddress = common.HexToAddress("0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419")

const feedDecimals = 8

const aggregatorABIJSON = `[
  {
    "inputs": [],
    "name": "latestRoundData",
    "outputs": [
      {"type": "uint80", "name": "roundId"},
      {"type": "int256", "name": "answer"},
      {"type": "uint256", "name": "startedAt"},
      {"type": "uint256", "name": "updatedAt"},
      {"type": "uint80", "name": "answeredInRound"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	aggregatorABI     abi.ABI
	aggregatorABIOnce sync.Once
	aggregatorABIErr  error
)

func aggregatorABIInstance() (abi.ABI, error) {
	aggregatorABIOnce.Do(func() {
		aggregatorABI, aggregatorABIErr = abi.JSON(strings.NewReader(aggregatorABIJSON))
	})
	return aggregatorABI, aggregatorABIErr
}

// ChainlinkOracle converts ETH amounts to a USD display string using the
// on-chain ETH/USD feed.
type ChainlinkOracle struct {
	caller ContractCaller
	feed   common.Address
}

func NewChainlinkOracle(caller ContractCaller) *ChainlinkOracle {
	return &ChainlinkOracle{caller: caller, feed: ethUsdFeedAddress}
}

// FiatValue returns the USD value of an ETH amount, e.g. "1234.56".
func (o *ChainlinkOracle) FiatValue(ctx context.Context, amount float64) (string, error) {
	if o.caller == nil {
		return "", fmt.Errorf("contract caller is nil")
	}

	parsed, err := aggregatorABIInstance()
	if err != nil {
		return "", fmt.Errorf("parse aggregator abi: %w", err)
	}

	data, err := parsed.Pack("latestRoundData")
	if err != nil {
		return "", fmt.Errorf("pack latestRoundData: %w", err)
	}
	feed := o.feed
	resp, err := o.caller.CallContract(ctx, ethereum.CallMsg{To: &feed, Data: data}, nil)
	if err != nil {
		return "", fmt.Errorf("call latestRoundData: %w", err)
	}
	values, err := parsed.Unpack("latestRoundData", resp)
	if err != nil {
		return "", fmt.Errorf("unpack latestRoundData: %w", err)
	}
	if len(values) < 2 {
		return "", fmt.Errorf("unexpected latestRoundData values: %d", len(values))
	}
	answer, ok := values[1].(*big.Int)
	if !ok {
		return "", fmt.Errorf("unexpected answer type %T", values[1])
	}
	if answer.Sign() <= 0 {
		return "", fmt.Errorf("feed returned non-positive rate: %s", answer)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(feedDecimals), nil)
	rate, _ := new(big.Float).Quo(
		new(big.Float).SetInt(answer),
		new(big.Float).SetInt(scale),
	).Float64()

	return fmt.Sprintf("%.2f", amount*rate), nil
}
