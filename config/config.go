// Package config loads and validates the settings for a chaindrive node.
// Settings come from the process environment; a .env file is honored when
// present so local setups match the deployed container layout.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Backend names for the metadata store.
const (
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

// Config holds all settings for a chaindrive node.
type Config struct {
	// DataDir is the root for the bolt database and the local content
	// store.
	DataDir string

	// MetadataBackend selects the metadata store: "bolt" or "postgres".
	MetadataBackend string

	// PostgresDSN is required when MetadataBackend is "postgres".
	PostgresDSN string

	// MasterSecret is the server-wide secret the at-rest material
	// wrapping key is derived from. Required.
	MasterSecret string

	// LedgerURL is the JSON-RPC endpoint of the ledger node. Empty means
	// offline mode: anchors are kept in memory and lost on restart.
	LedgerURL      string
	LedgerUser     string
	LedgerPassword string

	// ContentGatewayURL is the remote content gateway. Empty means the
	// local filesystem store under DataDir is used.
	ContentGatewayURL string
	ContentAPIKey     string
	ContentAPISecret  string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over file values.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DataDir:           envOr("CHAINDRIVE_DATA_DIR", ""),
		MetadataBackend:   envOr("CHAINDRIVE_METADATA_BACKEND", BackendBolt),
		PostgresDSN:       os.Getenv("CHAINDRIVE_POSTGRES_DSN"),
		MasterSecret:      os.Getenv("CHAINDRIVE_MASTER_SECRET"),
		LedgerURL:         os.Getenv("CHAINDRIVE_LEDGER_URL"),
		LedgerUser:        os.Getenv("CHAINDRIVE_LEDGER_USER"),
		LedgerPassword:    os.Getenv("CHAINDRIVE_LEDGER_PASSWORD"),
		ContentGatewayURL: os.Getenv("CHAINDRIVE_CONTENT_GATEWAY_URL"),
		ContentAPIKey:     os.Getenv("CHAINDRIVE_CONTENT_API_KEY"),
		ContentAPISecret:  os.Getenv("CHAINDRIVE_CONTENT_API_SECRET"),
		LogLevel:          envOr("CHAINDRIVE_LOG_LEVEL", "info"),
	}

	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envOr returns the environment value or a default when unset or empty.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
