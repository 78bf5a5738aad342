package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Output always goes to stderr so stdout stays
// reserved for command results. verbose lowers the level to debug; jsonOutput
// switches from the console encoder to structured JSON.
func New(verbose, jsonOutput bool) (*zap.Logger, error) {
	level := zap.WarnLevel
	if verbose {
		level = zap.DebugLevel
	}
	return NewAt(level, jsonOutput)
}

// NewAt builds a logger at a fixed level. Long-running commands use it to keep
// info-level request logs visible.
func NewAt(level zapcore.Level, jsonOutput bool) (*zap.Logger, error) {
	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableCaller = level > zap.DebugLevel
	return cfg.Build()
}

// JSONFromEnv reports whether PROMPTMD_LOG_FORMAT asks for JSON logs.
func JSONFromEnv() bool {
	return os.Getenv("PROMPTMD_LOG_FORMAT") == "json"
}
