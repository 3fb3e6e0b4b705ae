package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	closer func()
)

// Options controls where and how log lines are written.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	File   string // optional, written in addition to stdout
}

// InitLogger replaces the global logger. Output always goes to stdout and,
// when opts.File is set, to that file as well.
func InitLogger(opts Options) error {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		level = l
	}

	encoding := opts.Format
	if encoding == "" {
		encoding = "console"
	}

	outputs := []string{"stdout"}
	if opts.File != "" {
		outputs = append(outputs, opts.File)
	}

	cfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	set(l)
	return nil
}

// Close flushes buffered entries.
func Close() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// Init installs a development console logger; used when nothing was configured.
func Init() {
	l, err := zap.NewDevelopment(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	set(l)
}

// SetLogger installs l as the global logger, mainly for tests.
func SetLogger(l *zap.Logger) {
	set(l.WithOptions(zap.AddCallerSkip(1)))
}

func set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer()
	}
	base = l
	sugar = l.Sugar()
	closer = func() { _ = l.Sync() }
}

func get() *zap.SugaredLogger {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s == nil {
		Init()
		mu.RLock()
		s = sugar
		mu.RUnlock()
	}
	return s
}

// With returns a structured logger carrying fields, for code that logs
// the same table or page repeatedly.
func With(fields ...zap.Field) *zap.Logger {
	return get().Desugar().WithOptions(zap.AddCallerSkip(-1)).With(fields...)
}

func Info(format string, v ...interface{}) {
	get().Infof(format, v...)
}

func Infof(format string, v ...interface{}) {
	get().Infof(format, v...)
}

func Debugf(format string, v ...interface{}) {
	get().Debugf(format, v...)
}

func Error(format string, v ...interface{}) {
	get().Errorf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	get().Errorf(format, v...)
}

func Warn(format string, v ...interface{}) {
	get().Warnf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	get().Warnf(format, v...)
}
