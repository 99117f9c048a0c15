package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"SecretQuery/internal/chain"
	"SecretQuery/internal/fees"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath         = "configs/config.yaml"
	DefaultBech32Prefix = "secret"
	DefaultDenom        = "uscrt"
	DefaultCodeID       = 29003
	DefaultLogLevel     = "info"
)

type (
	Config struct {
		Production bool          `yaml:"production" env:"PRODUCTION"`
		LogLevel   string        `yaml:"log_level" env:"LOG_LEVEL"`
		Chain      Chain         `yaml:"chain"`
		Wallet     Wallet        `yaml:"wallet"`
		Contracts  Contracts     `yaml:"contracts"`
		Fees       fees.Schedule `yaml:"fees"`
		LocalNode  LocalNode     `yaml:"localnode" envPrefix:"LOCALNODE_"`
	}

	Chain struct {
		RESTURL      string `yaml:"rest_url" env:"SECRET_REST_URL"`
		RPCURL       string `yaml:"rpc_url" env:"SECRET_RPC_URL"`
		WSURL        string `yaml:"ws_url" env:"SECRET_WS_URL"`
		Bech32Prefix string `yaml:"bech32_prefix" env:"BECH32_PREFIX"`
		Denom        string `yaml:"denom" env:"DENOM"`
	}

	// Wallet is only ever filled from the environment.
	Wallet struct {
		Mnemonic string `yaml:"-" env:"MNEMONIC,unset"`
	}

	Contracts struct {
		CodeID uint64 `yaml:"code_id" env:"CODE_ID"`
	}

	LocalNode struct {
		Addr          string        `yaml:"addr" env:"ADDR"`
		ChainID       string        `yaml:"chain_id" env:"CHAIN_ID"`
		Height        int64         `yaml:"height" env:"HEIGHT"`
		BlockInterval time.Duration `yaml:"block_interval" env:"BLOCK_INTERVAL"`
	}
)

// ConfigurationError names a required setting that is missing or unusable.
type ConfigurationError struct {
	Field  string
	Env    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "is required"
	}
	if e.Env == "" {
		return fmt.Sprintf("config: %s %s", e.Field, reason)
	}
	return fmt.Sprintf("config: %s %s (set %s)", e.Field, reason, e.Env)
}

func defaults() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Chain: Chain{
			Bech32Prefix: DefaultBech32Prefix,
			Denom:        DefaultDenom,
		},
		Contracts: Contracts{CodeID: DefaultCodeID},
		LocalNode: LocalNode{
			Addr:          ":1317",
			ChainID:       "secretdev-1",
			Height:        1,
			BlockInterval: time.Second,
		},
	}
}

// Load reads .env, then the YAML file at path (or CONFIG_PATH, or
// configs/config.yaml), then the environment. Later sources win. A missing
// default file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
		explicit = false
	}

	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Chain.RESTURL = strings.TrimSpace(c.Chain.RESTURL)
	c.Chain.RPCURL = strings.TrimSpace(c.Chain.RPCURL)
	c.Chain.WSURL = strings.TrimSpace(c.Chain.WSURL)
	c.Chain.Bech32Prefix = strings.TrimSpace(c.Chain.Bech32Prefix)
	c.Chain.Denom = strings.TrimSpace(c.Chain.Denom)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.Chain.Bech32Prefix == "" {
		c.Chain.Bech32Prefix = DefaultBech32Prefix
	}
	if c.Chain.Denom == "" {
		c.Chain.Denom = DefaultDenom
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	// Entries from the file replace whole fees; the rest keep the default
	// amounts in the configured denom.
	c.Fees = fees.Default().WithDenom(c.Chain.Denom).Merge(c.Fees)
}

func (c *Config) validate() error {
	if err := c.Fees.Validate(); err != nil {
		return &ConfigurationError{Field: "fees", Reason: err.Error()}
	}
	if c.LocalNode.Height < 1 {
		return &ConfigurationError{Field: "localnode.height", Env: "LOCALNODE_HEIGHT", Reason: "must be positive"}
	}
	if c.LocalNode.BlockInterval <= 0 {
		return &ConfigurationError{Field: "localnode.block_interval", Env: "LOCALNODE_BLOCK_INTERVAL", Reason: "must be positive"}
	}
	return nil
}

// RequireREST checks the settings the LCD tools need.
func (c *Config) RequireREST() error {
	if c.Chain.RESTURL == "" {
		return &ConfigurationError{Field: "chain.rest_url", Env: "SECRET_REST_URL"}
	}
	u, err := url.Parse(c.Chain.RESTURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigurationError{Field: "chain.rest_url", Env: "SECRET_REST_URL", Reason: "must be an http(s) URL"}
	}
	return nil
}

func (c *Config) RequireWallet() error {
	if strings.TrimSpace(c.Wallet.Mnemonic) == "" {
		return &ConfigurationError{Field: "wallet.mnemonic", Env: "MNEMONIC"}
	}
	return nil
}

func (c *Config) RequireWS() error {
	if c.WSEndpoint() == "" {
		return &ConfigurationError{Field: "chain.ws_url", Env: "SECRET_WS_URL or SECRET_RPC_URL"}
	}
	return nil
}

// WSEndpoint is ws_url when set, otherwise derived from rpc_url.
func (c *Config) WSEndpoint() string {
	if c.Chain.WSURL != "" {
		return chain.DefaultWSEndpoint(c.Chain.WSURL)
	}
	return chain.DefaultWSEndpoint(c.Chain.RPCURL)
}
