// Package logging builds the zap loggers used by every antfarm host
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/antfarm/config"
)

// Options selects where a logger writes
type Options struct {
	// Debug forces debug level and writes to a timestamped file under the configured directory
	Debug bool
	// Output receives logs when Debug is off, nil discards them
	Output io.Writer
}

// New builds a logger from cfg
// The returned close function flushes the logger and releases any file it opened
func New(cfg config.LoggingConfig, opts Options) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var sink zapcore.WriteSyncer
	closeSink := func() {}

	switch {
	case opts.Debug:
		level = zapcore.DebugLevel
		path, err := debugLogPath(cfg.Dir, time.Now())
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.AddSync(f)
		closeSink = func() { _ = f.Close() }
	case opts.Output != nil:
		sink = zapcore.AddSync(opts.Output)
	default:
		return zap.NewNop(), func() {}, nil
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, zap.NewAtomicLevelAt(level))
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return logger, func() {
		_ = logger.Sync()
		closeSink()
	}, nil
}

func newEncoder(format string) zapcore.Encoder {
	if format == "console" {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		return zapcore.NewConsoleEncoder(ec)
	}
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(ec)
}

// debugLogPath creates dir and names a log file after the start time
func debugLogPath(dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return filepath.Join(dir, "antfarm-"+now.Format("20060102-150405")+".log"), nil
}
