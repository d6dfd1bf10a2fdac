package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	envRPCURL          = "AFTERLIFE_RPC_URL"
	envContract        = "AFTERLIFE_CONTRACT_ADDRESS"
	envChainID         = "AFTERLIFE_CHAIN_ID"
	envRefreshInterval = "AFTERLIFE_REFRESH_INTERVAL"
	envPollInterval    = "AFTERLIFE_RECEIPT_POLL_INTERVAL"
	envDatabase        = "AFTERLIFE_DB"
	envKeystore        = "AFTERLIFE_KEYSTORE"
	envMetricsAddr     = "AFTERLIFE_METRICS_ADDR"
	envLogLevel        = "AFTERLIFE_LOG_LEVEL"
)

// dotenvLookup answers from lookup first and falls back to the values in
// envFile. A missing or unreadable file is the same as an empty one.
func dotenvLookup(envFile string, lookup func(string) (string, bool)) func(string) (string, bool) {
	file, err := godotenv.Read(envFile)
	if err != nil {
		file = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}
}

// parseEnv overlays cfg with AFTERLIFE_* values.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str(envRPCURL, &cfg.RPCURL)
	str(envContract, &cfg.ContractAddress)
	str(envDatabase, &cfg.DatabasePath)
	str(envKeystore, &cfg.KeystorePath)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envLogLevel, &cfg.LogLevel)

	if v, ok := lookup(envChainID); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envChainID, err)
		}
		cfg.ChainID = id
	}
	if err := dur(envRefreshInterval, &cfg.RefreshInterval); err != nil {
		return err
	}
	return dur(envPollInterval, &cfg.ReceiptPollInterval)
}
