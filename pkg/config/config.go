package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

var ErrMissingWallet = errors.New("ETH_WALLET is not set")

type Config struct {
	// Account whose history is synced
	Wallet string

	// zkSync REST API
	APIURL      string
	PageSize    int
	HTTPTimeout time.Duration // 0 = transport defaults

	// Ledger file; .db/.sqlite selects the SQLite store
	LedgerPath string

	// Cron spec for repeated syncs, empty = run once
	Schedule string

	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Wallet:      strings.TrimSpace(os.Getenv("ETH_WALLET")),
		APIURL:      envOr("ZKSYNC_API_URL", "https://api.zksync.io/api/v0.1"),
		PageSize:    envInt("PAGE_SIZE", 100),
		HTTPTimeout: time.Duration(envInt("ZKSYNC_HTTP_TIMEOUT", 0)) * time.Second,
		LedgerPath:  envOr("LEDGER_PATH", "transactions.csv"),
		Schedule:    os.Getenv("SYNC_SCHEDULE"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Wallet == "" {
		return ErrMissingWallet
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.LedgerPath == "" {
		return fmt.Errorf("LEDGER_PATH is empty")
	}
	return nil
}

// WalletIsHex reports whether the wallet looks like a 20-byte hex address.
// Anything else is passed to the API as is.
func (c *Config) WalletIsHex() bool {
	return common.IsHexAddress(c.Wallet)
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
