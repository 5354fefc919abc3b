package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns the diagnostics logger. Output goes to stderr so it never mixes
// with command payloads on stdout; without verbose the logger is a no-op.
func New(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
