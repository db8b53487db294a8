// Package config loads service configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sld-dashboard/internal/whale"
)

// Config holds all application configuration.
type Config struct {
	Chain struct {
		RPCURL string `yaml:"rpc_url"`
		WSURL  string `yaml:"ws_url"`
	} `yaml:"chain"`
	Contracts struct {
		Token   string `yaml:"token"`
		Presale string `yaml:"presale"`
		Staking string `yaml:"staking"`
	} `yaml:"contracts"`
	Explorer struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"explorer"`
	Price struct {
		BaseURL  string `yaml:"base_url"`
		PairAddr string `yaml:"pair_addr"`
	} `yaml:"price"`
	Whale struct {
		Threshold string `yaml:"threshold"` // whole tokens, separators allowed
	} `yaml:"whale"`
	Database struct {
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickhouseDSN string `yaml:"clickhouse_dsn"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Schedule struct {
		AprSnapshotCron string `yaml:"apr_snapshot_cron"`
	} `yaml:"schedule"`
	Poll struct {
		GasSeconds   int `yaml:"gas_seconds"`
		PriceSeconds int `yaml:"price_seconds"`
		WhaleSeconds int `yaml:"whale_seconds"`
	} `yaml:"poll"`
}

// Load reads config from a YAML file, then applies environment
// variable overrides and defaults. A missing file is not an error;
// everything can come from the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BSC_RPC_URL"); v != "" {
		cfg.Chain.RPCURL = v
	}
	if v := os.Getenv("BSC_WS_URL"); v != "" {
		cfg.Chain.WSURL = v
	}
	if v := os.Getenv("TOKEN_ADDRESS"); v != "" {
		cfg.Contracts.Token = v
	}
	if v := os.Getenv("PRESALE_ADDRESS"); v != "" {
		cfg.Contracts.Presale = v
	}
	if v := os.Getenv("STAKING_ADDRESS"); v != "" {
		cfg.Contracts.Staking = v
	}
	if v := os.Getenv("BSCSCAN_API_KEY"); v != "" {
		cfg.Explorer.APIKey = v
	}
	if v := os.Getenv("BSCSCAN_BASE_URL"); v != "" {
		cfg.Explorer.BaseURL = v
	}
	if v := os.Getenv("PRICE_PAIR_ADDRESS"); v != "" {
		cfg.Price.PairAddr = v
	}
	if v := os.Getenv("WHALE_THRESHOLD"); v != "" {
		cfg.Whale.Threshold = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Database.ClickhouseDSN = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	// Defaults
	if cfg.Chain.RPCURL == "" {
		cfg.Chain.RPCURL = "https://bsc-dataseed.binance.org"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Whale.Threshold == "" {
		cfg.Whale.Threshold = "1,000,000"
	}
	if cfg.Schedule.AprSnapshotCron == "" {
		cfg.Schedule.AprSnapshotCron = "@hourly"
	}
	if cfg.Poll.GasSeconds == 0 {
		cfg.Poll.GasSeconds = 30
	}
	if cfg.Poll.PriceSeconds == 0 {
		cfg.Poll.PriceSeconds = 60
	}
	if cfg.Poll.WhaleSeconds == 0 {
		cfg.Poll.WhaleSeconds = 60
	}

	return cfg, nil
}

// WhaleThreshold parses the configured threshold into whole tokens.
func (c *Config) WhaleThreshold() (float64, error) {
	return whale.ParseThreshold(c.Whale.Threshold)
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}
	if c.Contracts.Token == "" {
		return fmt.Errorf("contracts.token is required")
	}
	if c.Contracts.Staking == "" {
		return fmt.Errorf("contracts.staking is required")
	}
	if _, err := c.WhaleThreshold(); err != nil {
		return fmt.Errorf("whale.threshold: %w", err)
	}
	for name, v := range map[string]int{
		"poll.gas_seconds":   c.Poll.GasSeconds,
		"poll.price_seconds": c.Poll.PriceSeconds,
		"poll.whale_seconds": c.Poll.WhaleSeconds,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative (got %d)", name, v)
		}
	}
	return nil
}
