package config

import "errors"

var (
	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrEmptyMasterSecret indicates no master secret is configured.
	ErrEmptyMasterSecret = errors.New("config: master secret must not be empty")

	// ErrInvalidBackend indicates the metadata backend name is not recognized.
	ErrInvalidBackend = errors.New("config: invalid metadata backend (must be \"bolt\" or \"postgres\")")

	// ErrEmptyPostgresDSN indicates the postgres backend was selected
	// without a connection string.
	ErrEmptyPostgresDSN = errors.New("config: postgres backend requires a DSN")

	// ErrInvalidLedgerURL indicates the ledger endpoint is malformed.
	ErrInvalidLedgerURL = errors.New("config: invalid ledger URL")

	// ErrInvalidGatewayURL indicates the content gateway endpoint is malformed.
	ErrInvalidGatewayURL = errors.New("config: invalid content gateway URL")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")
)
