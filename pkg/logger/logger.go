package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	initMu sync.Mutex
)

// Options controls where and how logs are written.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // json or console
	Dir     string // empty disables the daily file
	Service string
}

// SetupLogger initializes the process logger. Output goes to stdout and, when
// Dir is set, to Dir/YYYY-MM-DD.log.
func SetupLogger(opts Options) error {
	initMu.Lock()
	defer initMu.Unlock()

	level := parseLevel(opts.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if opts.Format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		name := filepath.Join(opts.Dir, time.Now().Format("2006-01-02")+".log")
		file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		// the file always gets JSON so it can be shipped as-is
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(file), level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if opts.Service != "" {
		l = l.With(zap.String("service_name", opts.Service))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		l = l.With(zap.String("hostname", hostname))
	}

	base = l
	// the printf helpers below add one frame
	sugar = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
	return nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// L returns the structured logger. Before SetupLogger it is a no-op logger,
// which keeps tests quiet.
func L() *zap.Logger {
	initMu.Lock()
	defer initMu.Unlock()
	if base == nil {
		base = zap.NewNop()
		sugar = base.Sugar()
	}
	return base
}

func s() *zap.SugaredLogger {
	L()
	return sugar
}

// Info logs at info level.
func Info(format string, v ...interface{}) {
	s().Infof(format, v...)
}

// Warning logs at warn level.
func Warning(format string, v ...interface{}) {
	s().Warnf(format, v...)
}

// Error logs at error level.
func Error(format string, v ...interface{}) {
	s().Errorf(format, v...)
}

// Sync flushes buffered entries.
func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}
