// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the wallet daemon.
type Config struct {
	// RPCEndpoint is the Solana JSON-RPC HTTP endpoint.
	RPCEndpoint string `env:"WALLET_HUB_RPC_ENDPOINT" envDefault:"https://api.devnet.solana.com"`
	// WSEndpoint is the Solana WebSocket endpoint for account subscriptions.
	// Leave empty to disable the account watcher.
	WSEndpoint string `env:"WALLET_HUB_WS_ENDPOINT"`

	// WalletAddress is the base58 public key of the wallet to serve.
	WalletAddress string `env:"WALLET_HUB_WALLET_ADDRESS"`
	// UserID identifies the mirror rows owned by this wallet.
	UserID string `env:"WALLET_HUB_USER_ID" envDefault:"default"`

	// PostgresDSN is the mirror database. Leave empty to use in-memory
	// mirror stores.
	PostgresDSN string `env:"WALLET_HUB_POSTGRES_DSN"`
	// ClickHouseDSN is the balance history database. Leave empty to use an
	// in-memory history store.
	ClickHouseDSN string `env:"WALLET_HUB_CLICKHOUSE_DSN"`

	// ContentEndpoint is the metadata/file upload service base URL.
	ContentEndpoint string `env:"WALLET_HUB_CONTENT_ENDPOINT" envDefault:"http://localhost:9090"`

	// ListenAddr is the HTTP API listen address.
	ListenAddr string `env:"WALLET_HUB_LISTEN_ADDR" envDefault:":8080"`

	// LogLevel is the zap level: debug, info, warn, error.
	LogLevel string `env:"WALLET_HUB_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.WalletAddress == "" {
		return Config{}, fmt.Errorf("WALLET_HUB_WALLET_ADDRESS is required")
	}
	return cfg, nil
}
