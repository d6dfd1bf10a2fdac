// Package config loads runtime configuration for the AfterLife CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: AFTERLIFE_* variables, with a .env file in the working
//     directory filling in whatever the process environment does not set.
//  3. Optional JSON file selected via -c / -config or $AFTERLIFE_CONFIG.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-r string     JSON-RPC endpoint of the Ethereum node
//	-a string     address of the will contract
//	-n int        chain id (0 asks the node)
//	-i duration   dashboard refresh interval
//	-p duration   receipt poll interval
//	-d string     path of the local SQLite database
//	-k string     go-ethereum keystore file or directory
//	-m string     host:port to serve Prometheus metrics on (empty disables)
//	-l string     log level: debug, info, warn or error
//
// # JSON schema
//
// Intervals use timex.Duration, so they may be strings like "5m" or integer
// nanoseconds:
//
//	{
//	  "rpc_url": "https://rpc.sepolia.org",
//	  "contract_address": "0x...",
//	  "chain_id": 11155111,
//	  "refresh_interval": "5m",
//	  "receipt_poll_interval": "3s",
//	  "database_path": "afterlife.db",
//	  "keystore_path": "",
//	  "metrics_addr": "",
//	  "log_level": "info"
//	}
package config
