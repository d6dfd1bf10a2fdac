package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the AfterLife CLI.
type Config struct {
	RPCURL              string        `validate:"required,url"`
	ContractAddress     string        `validate:"required,eth_addr"`
	ChainID             int64         `validate:"gte=0"`
	RefreshInterval     time.Duration `validate:"gt=0"`
	ReceiptPollInterval time.Duration `validate:"gt=0"`
	DatabasePath        string        `validate:"required"`
	KeystorePath        string
	MetricsAddr         string `validate:"omitempty,hostname_port"`
	LogLevel            string `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates c with sensible defaults. There is no default
// contract address.
func (c *Config) LoadDefaults() {
	c.RPCURL = "http://127.0.0.1:8545"
	c.ChainID = 0
	c.RefreshInterval = 5 * time.Minute
	c.ReceiptPollInterval = 3 * time.Second
	c.DatabasePath = "afterlife.db"
	c.LogLevel = "info"
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from defaults, environment, JSON and flags, in
// that order, and validates the result.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv, ".env")
}

func load(args []string, lookup func(string) (string, bool), envFile string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, dotenvLookup(envFile, lookup)); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
