package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger honoring the configured level. Debug level
// switches to the development encoder for readable local output.
func NewLogger(level string) (*zap.Logger, error) {
	var zapConfig zap.Config
	if strings.ToLower(level) == "debug" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	parsed, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, ErrInvalidLogLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(parsed)

	return zapConfig.Build()
}
