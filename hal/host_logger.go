package hal

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig selects the level and destination of the host logger.
type LogConfig struct {
	Level string
	// File enables a size-rotated log file instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ZapLogger is the host Logger backed by zap.
type ZapLogger struct {
	l     *zap.Logger
	level zap.AtomicLevel
}

// ParseLevel parses debug|info|warn|error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewLogger builds a console-encoded zap logger writing to stderr or to a
// lumberjack-rotated file.
func NewLogger(cfg LogConfig) (*ZapLogger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var ws zapcore.WriteSyncer
	if cfg.File != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
	} else {
		ws = zapcore.Lock(os.Stderr)
	}

	atom := zap.NewAtomicLevelAt(zapcore.Level(lvl))
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), ws, atom)
	return &ZapLogger{l: zap.New(core), level: atom}, nil
}

// NewStderrLogger returns an info-level logger on stderr.
func NewStderrLogger() *ZapLogger {
	l, err := NewLogger(LogConfig{Level: "info"})
	if err != nil {
		return &ZapLogger{l: zap.NewNop(), level: zap.NewAtomicLevel()}
	}
	return l
}

func newZapLogger(core zapcore.Core) *ZapLogger {
	return &ZapLogger{l: zap.New(core), level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

func (l *ZapLogger) WriteLineString(s string) { l.WriteLevel(LevelInfo, s) }

func (l *ZapLogger) WriteLineBytes(b []byte) { l.WriteLevel(LevelInfo, string(b)) }

func (l *ZapLogger) WriteLevel(level Level, line string) {
	if ce := l.l.Check(zapcore.Level(level), line); ce != nil {
		ce.Write()
	}
}

// SetLevel changes the minimum level at runtime.
func (l *ZapLogger) SetLevel(level Level) { l.level.SetLevel(zapcore.Level(level)) }

// Zap exposes the underlying logger for code that logs structured fields.
func (l *ZapLogger) Zap() *zap.Logger { return l.l }

// Sync flushes buffered output.
func (l *ZapLogger) Sync() error { return l.l.Sync() }
