package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ensRegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

const ensRegistryABIJSON = `[
  {"inputs": [{"type": "bytes32", "name": "node"}], "name": "resolver", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

const ensResolverABIJSON = `[
  {"inputs": [{"type": "bytes32", "name": "node"}], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

var (
	ensRegistryABI abi.ABI
	ensResolverABI abi.ABI
	ensABIOnce     sync.Once
	ensABIErr      error
)

func ensABIs() (abi.ABI, abi.ABI, error) {
	ensABIOnce.Do(func() {
		ensRegistryABI, ensABIErr = abi.JSON(strings.NewReader(ensRegistryABIJSON))
		if ensABIErr != nil {
			return
		}
		ensResolverABI, ensABIErr = abi.JSON(strings.NewReader(ensResolverABIJSON))
	})
	return ensRegistryABI, ensResolverABI, ensABIErr
}

// ENSResolver resolves display names through ENS reverse records. Results
// are cached per address; the zero string caches misses too.
type ENSResolver struct {
	caller ContractCaller

	mu    sync.RWMutex
	cache map[common.Address]string
}

func NewENSResolver(caller ContractCaller) *ENSResolver {
	return &ENSResolver{
		caller: caller,
		cache:  make(map[common.Address]string),
	}
}

// ResolveName looks up the reverse record for addr. Missing records resolve
// to the empty string without error; callers fall back to the hex address.
func (r *ENSResolver) ResolveName(ctx context.Context, addr common.Address) (string, error) {
	r.mu.RLock()
	name, ok := r.cache[addr]
	r.mu.RUnlock()
	if ok {
		return name, nil
	}

	name, err := r.lookup(ctx, addr)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[addr] = name
	r.mu.Unlock()
	return name, nil
}

func (r *ENSResolver) lookup(ctx context.Context, addr common.Address) (string, error) {
	if r.caller == nil {
		return "", fmt.Errorf("contract caller is nil")
	}

	registryABI, resolverABI, err := ensABIs()
	if err != nil {
		return "", fmt.Errorf("parse ens abi: %w", err)
	}

	node := reverseNode(addr)

	data, err := registryABI.Pack("resolver", node)
	if err != nil {
		return "", fmt.Errorf("pack resolver: %w", err)
	}
	registry := ensRegistryAddress
	resp, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &registry, Data: data}, nil)
	if err != nil {
		return "", fmt.Errorf("call resolver: %w", err)
	}
	values, err := registryABI.Unpack("resolver", resp)
	if err != nil {
		return "", fmt.Errorf("unpack resolver: %w", err)
	}
	resolver, ok := values[0].(common.Address)
	if !ok || resolver == (common.Address{}) {
		return "", nil
	}

	data, err = resolverABI.Pack("name", node)
	if err != nil {
		return "", fmt.Errorf("pack name: %w", err)
	}
	resp, err = r.caller.CallContract(ctx, ethereum.CallMsg{To: &resolver, Data: data}, nil)
	if err != nil {
		return "", fmt.Errorf("call name: %w", err)
	}
	values, err = resolverABI.Unpack("name", resp)
	if err != nil {
		return "", fmt.Errorf("unpack name: %w", err)
	}
	name, _ := values[0].(string)
	return name, nil
}

// reverseNode computes the namehash of "<addr>.addr.reverse".
func reverseNode(addr common.Address) [32]byte {
	labels := []string{strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")), "addr", "reverse"}

	var node [32]byte
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		copy(node[:], crypto.Keccak256(node[:], labelHash))
	}
	return node
}
