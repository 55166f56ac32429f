package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

type marketEntry struct {
	Address    string `mapstructure:"address"`
	Name       string `mapstructure:"name"`
	Schema     string `mapstructure:"schema"`
	PriceField string `mapstructure:"price_field"`
	Swap       bool   `mapstructure:"swap"`
	Aggregator bool   `mapstructure:"aggregator"`
}

type currencyEntry struct {
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Decimals uint8  `mapstructure:"decimals"`
}

// Load builds the registry from built-in defaults, merging entries from an
// optional config file on top. File entries replace defaults per address.
func Load(path string) (*Registry, error) {
	r, err := NewDefault()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return r, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read registry config: %w", err)
	}

	var markets []marketEntry
	if err := v.UnmarshalKey("markets", &markets); err != nil {
		return nil, fmt.Errorf("parse markets: %w", err)
	}
	for _, entry := range markets {
		if !common.IsHexAddress(entry.Address) {
			return nil, fmt.Errorf("invalid market address: %s", entry.Address)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("market %s has no name", entry.Address)
		}
		schema, err := SchemaByName(entry.Schema)
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", entry.Name, err)
		}
		r.markets[common.HexToAddress(entry.Address)] = Market{
			Name:         entry.Name,
			Schema:       schema,
			IsSwap:       entry.Swap,
			IsAggregator: entry.Aggregator,
			PriceField:   entry.PriceField,
		}
	}

	var currencies []currencyEntry
	if err := v.UnmarshalKey("currencies", &currencies); err != nil {
		return nil, fmt.Errorf("parse currencies: %w", err)
	}
	for _, entry := range currencies {
		if !common.IsHexAddress(entry.Address) {
			return nil, fmt.Errorf("invalid currency address: %s", entry.Address)
		}
		if entry.Symbol == "" {
			return nil, fmt.Errorf("currency %s has no symbol", entry.Address)
		}
		r.currencies[common.HexToAddress(entry.Address)] = Currency{
			Symbol:   entry.Symbol,
			Decimals: entry.Decimals,
		}
	}

	return r, nil
}
