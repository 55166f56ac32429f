package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ParseConfig holds configuration for the parse command.
type ParseConfig struct {
	RPCURL   string
	Txs      []string
	Registry string
	Monitor  string
	Out      string
	PGDSN    string
	NoEnrich bool
	LogLevel string
}

// LoadParse merges config file, environment variables, and flags into ParseConfig.
func LoadParse(cfgFile string, flags *pflag.FlagSet) (ParseConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ParseConfig{}, err
	}

	v.SetDefault("out", "./data/sales.jsonl")
	v.SetDefault("log-level", "info")

	cfg := ParseConfig{
		RPCURL:   v.GetString("rpc"),
		Txs:      getStringSlice(v, "tx"),
		Registry: v.GetString("registry"),
		Monitor:  v.GetString("monitor"),
		Out:      v.GetString("out"),
		PGDSN:    v.GetString("pg-dsn"),
		NoEnrich: v.GetBool("no-enrich"),
		LogLevel: v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SALESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
