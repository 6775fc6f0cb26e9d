package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. LOG_LEVEL-style tuning happens at the
// call site; ISO8601 timestamps so log lines line up with Postgres.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "ts"

	return cfg.Build()
}

// NewDevelopment builds a console logger for local runs.
func NewDevelopment() (*zap.Logger, error) {
	return zap.NewDevelopment()
}
