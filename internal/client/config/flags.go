package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/afterlife/internal/flagx"
)

var knownFlags = []string{"-r", "-a", "-n", "-i", "-p", "-d", "-k", "-m", "-l"}

// parseFlags populates Config fields from command-line flags. Flags it does
// not know, such as -c, are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("afterlife", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.RPCURL, "r", cfg.RPCURL, "JSON-RPC endpoint")
	fs.StringVar(&cfg.ContractAddress, "a", cfg.ContractAddress, "will contract address")
	fs.Int64Var(&cfg.ChainID, "n", cfg.ChainID, "chain id (0 asks the node)")
	fs.DurationVar(&cfg.RefreshInterval, "i", cfg.RefreshInterval, "dashboard refresh interval")
	fs.DurationVar(&cfg.ReceiptPollInterval, "p", cfg.ReceiptPollInterval, "receipt poll interval")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.KeystorePath, "k", cfg.KeystorePath, "keystore file or directory")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
