// Package logging assembles the CLI's zap logger: a console core on stderr,
// plus optional JSON (stdout), file, and remote cores selected by flags. The
// remote core ships records through logship so network trouble never stalls
// the interactive flow.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/danshapiro/codexlink/internal/logship"
)

// Options mirror the CLI logging flags. RemoteSync forces inline delivery
// for deterministic tests; it is an explicit choice, never inferred from the
// environment.
type Options struct {
	Verbose    bool
	Level      string
	JSON       bool
	FilePath   string
	RemoteURL  string
	RemoteSync bool
}

// Setup builds the logger and returns it with a shutdown func that flushes
// the file core and drains the remote dispatcher. The returned dispatcher is
// nil unless a remote URL was configured.
func Setup(opts Options) (*zap.Logger, *logship.Dispatcher, func(), error) {
	level := resolveLevel(opts)

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}

	if opts.JSON {
		jsonCfg := zap.NewProductionEncoderConfig()
		jsonCfg.TimeKey = "ts"
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.Lock(os.Stdout), level))
	}

	var file *os.File
	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(f), level))
	}

	var dispatcher *logship.Dispatcher
	if opts.RemoteURL != "" {
		transport := logship.NewHTTPTransport(opts.RemoteURL, "", nil)
		dispatcher = logship.New(transport, logship.Config{Synchronous: opts.RemoteSync})
		cores = append(cores, NewShipCore(dispatcher, level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	shutdown := func() {
		_ = logger.Sync()
		if dispatcher != nil {
			dispatcher.Close()
		}
		if file != nil {
			file.Close()
		}
	}
	return logger, dispatcher, shutdown, nil
}

func resolveLevel(opts Options) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(opts.Level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warning", "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	if opts.Verbose {
		return zapcore.DebugLevel
	}
	return zapcore.WarnLevel
}

// Event logs a structured event with the standard field vocabulary. It never
// fails the caller: a nil logger is a no-op.
func Event(logger *zap.Logger, event string, fields ...zap.Field) {
	if logger == nil {
		return
	}
	logger.Info(event, append([]zap.Field{zap.String("event", event)}, fields...)...)
}

// Timed returns a zap duration field in the duration_ms vocabulary.
func Timed(start time.Time) zap.Field {
	return zap.Int64("duration_ms", time.Since(start).Milliseconds())
}
