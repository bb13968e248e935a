package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.MasterSecret == "" {
		return ErrEmptyMasterSecret
	}

	switch cfg.MetadataBackend {
	case BackendBolt:
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return ErrEmptyPostgresDSN
		}
	default:
		return ErrInvalidBackend
	}

	if cfg.LedgerURL != "" {
		if err := validateURL(cfg.LedgerURL); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidLedgerURL, err)
		}
	}
	if cfg.ContentGatewayURL != "" {
		if err := validateURL(cfg.ContentGatewayURL); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidGatewayURL, err)
		}
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
