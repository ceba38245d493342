// Package logging wires the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the global logger. A no-op until Init runs so packages can log
// during startup without nil checks.
var L = zap.NewNop()

// Init builds the global logger. format is "json" or "console".
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stderr), lvl)
	L = zap.New(core, zap.AddCaller())
	return nil
}

// Named returns a child logger for a subsystem.
func Named(name string) *zap.Logger { return L.Named(name) }

// Sync flushes buffered entries. Safe to call on shutdown paths.
func Sync() {
	_ = L.Sync()
}
