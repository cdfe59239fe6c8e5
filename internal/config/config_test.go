package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WALLET_HUB_WALLET_ADDRESS", "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RPCEndpoint != "https://api.devnet.solana.com" {
		t.Errorf("RPCEndpoint = %s, want devnet default", cfg.RPCEndpoint)
	}
	if cfg.WSEndpoint != "" {
		t.Errorf("WSEndpoint = %s, want empty (watcher disabled)", cfg.WSEndpoint)
	}
	if cfg.UserID != "default" {
		t.Errorf("UserID = %s, want default", cfg.UserID)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %s, want :8080", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.PostgresDSN != "" || cfg.ClickHouseDSN != "" {
		t.Error("DSNs should default to empty (in-memory stores)")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WALLET_HUB_WALLET_ADDRESS", "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	t.Setenv("WALLET_HUB_RPC_ENDPOINT", "http://localhost:8899")
	t.Setenv("WALLET_HUB_WS_ENDPOINT", "ws://localhost:8900")
	t.Setenv("WALLET_HUB_USER_ID", "alice")
	t.Setenv("WALLET_HUB_POSTGRES_DSN", "postgres://localhost/wallet")
	t.Setenv("WALLET_HUB_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RPCEndpoint != "http://localhost:8899" {
		t.Errorf("RPCEndpoint = %s", cfg.RPCEndpoint)
	}
	if cfg.WSEndpoint != "ws://localhost:8900" {
		t.Errorf("WSEndpoint = %s", cfg.WSEndpoint)
	}
	if cfg.UserID != "alice" {
		t.Errorf("UserID = %s", cfg.UserID)
	}
	if cfg.PostgresDSN != "postgres://localhost/wallet" {
		t.Errorf("PostgresDSN = %s", cfg.PostgresDSN)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s", cfg.LogLevel)
	}
}

func TestLoad_MissingWalletAddress(t *testing.T) {
	t.Setenv("WALLET_HUB_WALLET_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want missing wallet address error")
	}
}
