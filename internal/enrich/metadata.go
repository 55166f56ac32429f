package enrich

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const tokenNameStringABIJSON = `[
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

const tokenNameBytes32ABIJSON = `[
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	tokenNameStringABI      abi.ABI
	tokenNameStringABIOnce  sync.Once
	tokenNameStringABIErr   error
	tokenNameBytes32ABI     abi.ABI
	tokenNameBytes32ABIOnce sync.Once
	tokenNameBytes32ABIErr  error
)

func tokenNameStringABIInstance() (abi.ABI, error) {
	tokenNameStringABIOnce.Do(func() {
		tokenNameStringABI, tokenNameStringABIErr = abi.JSON(strings.NewReader(tokenNameStringABIJSON))
	})
	return tokenNameStringABI, tokenNameStringABIErr
}

func tokenNameBytes32ABIInstance() (abi.ABI, error) {
	tokenNameBytes32ABIOnce.Do(func() {
		tokenNameBytes32ABI, tokenNameBytes32ABIErr = abi.JSON(strings.NewReader(tokenNameBytes32ABIJSON))
	})
	return tokenNameBytes32ABI, tokenNameBytes32ABIErr
}

// TokenMetadata fetches collection names via contract calls, with a cache.
// Contracts returning bytes32 names are handled as a fallback.
type TokenMetadata struct {
	caller ContractCaller

	mu    sync.RWMutex
	cache map[common.Address]string
}

func NewTokenMetadata(caller ContractCaller) *TokenMetadata {
	return &TokenMetadata{
		caller: caller,
		cache:  make(map[common.Address]string),
	}
}

// TokenName returns the collection's name, or the empty string when the
// contract exposes none.
func (m *TokenMetadata) TokenName(ctx context.Context, contract common.Address) (string, error) {
	m.mu.RLock()
	name, ok := m.cache[contract]
	m.mu.RUnlock()
	if ok {
		return name, nil
	}

	name, err := m.fetch(ctx, contract)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.cache[contract] = name
	m.mu.Unlock()
	return name, nil
}

func (m *TokenMetadata) fetch(ctx context.Context, contract common.Address) (string, error) {
	if m.caller == nil {
		return "", fmt.Errorf("contract caller is nil")
	}

	stringABI, err := tokenNameStringABIInstance()
	if err != nil {
		return "", fmt.Errorf("parse name abi: %w", err)
	}
	bytes32ABI, err := tokenNameBytes32ABIInstance()
	if err != nil {
		return "", fmt.Errorf("parse bytes32 name abi: %w", err)
	}

	call := func(parsed abi.ABI) ([]interface{}, error) {
		data, err := parsed.Pack("name")
		if err != nil {
			return nil, fmt.Errorf("pack name: %w", err)
		}
		resp, err := m.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
		if err != nil {
			return nil, fmt.Errorf("call name: %w", err)
		}
		values, err := parsed.Unpack("name", resp)
		if err != nil {
			return nil, fmt.Errorf("unpack name: %w", err)
		}
		return values, nil
	}

	if values, err := call(stringABI); err == nil {
		if name, ok := values[0].(string); ok {
			return name, nil
		}
	}

	values, err := call(bytes32ABI)
	if err != nil {
		return "", err
	}
	if name, ok := bytes32ToString(values[0]); ok {
		return name, nil
	}
	return "", nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}
