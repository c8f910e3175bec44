package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is stamped on every line written by the pcap query api.
const Service = "pcap-query"

// ParseLevel falls back to info when level is not a zap level.
func ParseLevel(level string) zap.AtomicLevel {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return lvl
}

// NewConfig returns the console configuration of the api logger.
func NewConfig(lvl zap.AtomicLevel) zap.Config {
	return zap.Config{
		Level:    lvl,
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "severity",
			NameKey:        "component",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		InitialFields:    map[string]any{"service": Service},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// InitLog builds the api logger. It panics when the configuration cannot be built.
func InitLog(lvl zap.AtomicLevel) *zap.Logger {
	cfg := NewConfig(lvl)
	logger, err := cfg.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		panic(err)
	}
	return logger
}
