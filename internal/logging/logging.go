package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the CLI logger: human-readable console lines on stderr, so log
// output never mixes with receipts on stdout. At debug level the logger is in
// development mode and DPanic panics.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), lvl)
	opts := []zap.Option{zap.AddCaller()}
	if lvl == zapcore.DebugLevel {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}
