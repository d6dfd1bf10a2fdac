package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/afterlife/internal/flagx"
	"github.com/dmitrijs2005/afterlife/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" apart from "zero", so a file only overrides what it
// mentions.
type JsonConfig struct {
	RPCURL              *string         `json:"rpc_url"`
	ContractAddress     *string         `json:"contract_address"`
	ChainID             *int64          `json:"chain_id"`
	RefreshInterval     *timex.Duration `json:"refresh_interval"`
	ReceiptPollInterval *timex.Duration `json:"receipt_poll_interval"`
	DatabasePath        *string         `json:"database_path"`
	KeystorePath        *string         `json:"keystore_path"`
	MetricsAddr         *string         `json:"metrics_addr"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c/-config, or by
// $AFTERLIFE_CONFIG when no flag is given.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIf(&cfg.RPCURL, jc.RPCURL)
	setIf(&cfg.ContractAddress, jc.ContractAddress)
	setIf(&cfg.ChainID, jc.ChainID)
	setIf(&cfg.DatabasePath, jc.DatabasePath)
	setIf(&cfg.KeystorePath, jc.KeystorePath)
	setIf(&cfg.MetricsAddr, jc.MetricsAddr)
	setIf(&cfg.LogLevel, jc.LogLevel)
	if jc.RefreshInterval != nil {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.ReceiptPollInterval != nil {
		cfg.ReceiptPollInterval = jc.ReceiptPollInterval.Duration
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
