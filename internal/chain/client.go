package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"salescope/internal/model"
)

// ERC721 Transfer topic, used by the monitored-token lookup.
var transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// TransactionContext fetches a transaction's receipt and sender and shapes
// them for the parser. Fails when the node does not know the hash.
func (c *Client) TransactionContext(ctx context.Context, txHash common.Hash) (model.Receipt, error) {
	receipt, err := c.ethClient.TransactionReceipt(ctx, txHash)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("fetch receipt %s: %w", txHash.Hex(), err)
	}

	tx, _, err := c.ethClient.TransactionByHash(ctx, txHash)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("fetch transaction %s: %w", txHash.Hex(), err)
	}
	if tx.To() == nil {
		return model.Receipt{}, fmt.Errorf("transaction %s has no recipient", txHash.Hex())
	}

	from, err := c.ethClient.TransactionSender(ctx, tx, receipt.BlockHash, receipt.TransactionIndex)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("resolve sender %s: %w", txHash.Hex(), err)
	}

	logs := make([]model.LogEntry, 0, len(receipt.Logs))
	for _, log := range receipt.Logs {
		logs = append(logs, model.LogEntryFromChain(log))
	}

	return model.Receipt{
		TxHash: txHash,
		To:     *tx.To(),
		From:   from,
		Logs:   logs,
	}, nil
}

// TransferredTokenID scans the transaction's receipt for an ERC721 transfer
// of the given collection and returns its token id, or nil if none moved.
func (c *Client) TransferredTokenID(ctx context.Context, txHash common.Hash, collection common.Address) (*big.Int, error) {
	receipt, err := c.ethClient.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("fetch receipt %s: %w", txHash.Hex(), err)
	}

	for _, log := range receipt.Logs {
		if log.Address != collection {
			continue
		}
		if len(log.Topics) != 4 || log.Topics[0] != transferTopic {
			continue
		}
		return new(big.Int).SetBytes(log.Topics[3].Bytes()), nil
	}
	return nil, nil
}

// FilterLogs returns logs in the given range for addresses and topic0 filters.
func (c *Client) FilterLogs(
	ctx context.Context,
	fromBlock uint64,
	toBlock uint64,
	addresses []common.Address,
	topic0 []common.Hash,
) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
	}
	if len(topic0) > 0 {
		query.Topics = [][]common.Hash{topic0}
	}
	return c.ethClient.FilterLogs(ctx, query)
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}
