package log

import (
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config selects the global logger. Zero value gives a production JSON logger at info.
type Config struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	Encoding    string `yaml:"encoding"` // "json" or "console"
}

var global atomic.Pointer[zap.SugaredLogger]

func init() {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	global.Store(l.Sugar())
}

// Init replaces the global logger.
func Init(cfg Config) error {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return errors.Wrap(err, "failed to build logger")
	}
	global.Store(l.Sugar())
	return nil
}

// SetLogger swaps the global logger, mostly for tests (zaptest / observer cores).
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l.Sugar())
}

func Logger() *zap.SugaredLogger {
	return global.Load()
}

func Debug(msg string, keysAndValues ...interface{}) {
	global.Load().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	global.Load().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	global.Load().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	global.Load().Errorw(msg, keysAndValues...)
}

// Log writes at a level chosen at runtime, e.g. from a retry.Config.
func Log(level Level, msg string, keysAndValues ...interface{}) {
	l := global.Load()
	switch level {
	case DebugLevel:
		l.Debugw(msg, keysAndValues...)
	case WarnLevel:
		l.Warnw(msg, keysAndValues...)
	case ErrorLevel:
		l.Errorw(msg, keysAndValues...)
	default:
		l.Infow(msg, keysAndValues...)
	}
}

func Sync() error {
	return global.Load().Sync()
}
