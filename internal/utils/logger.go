package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig selects the level and optional rotated file sink.
type LogConfig struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	loggerMu sync.RWMutex
	logger   *zap.Logger
	rotator  *lumberjack.Logger
)

// InitLogger builds the process logger. An empty level gives a silent logger.
func InitLogger(cfg LogConfig) error {
	if cfg.Level == "" {
		setLogger(zap.NewNop(), nil)
		return nil
	}

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level),
	}

	var lj *lumberjack.Logger
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		lj = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(lj), level))
	}

	setLogger(zap.New(zapcore.NewTee(cores...), zap.AddCaller()), lj)
	return nil
}

func setLogger(l *zap.Logger, lj *lumberjack.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if rotator != nil {
		_ = rotator.Close()
	}
	logger, rotator = l, lj
}

// Logger returns the process logger, a nop logger before InitLogger.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Named returns a child logger for a component.
func Named(name string) *zap.Logger {
	return Logger().Named(name)
}

// RotateLog forces the file sink to start a new file. Wired to SIGHUP.
func RotateLog() error {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if rotator == nil {
		return nil
	}
	return rotator.Rotate()
}

// CloseLogger flushes buffered entries and closes the file sink.
func CloseLogger() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger != nil {
		_ = logger.Sync()
	}
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
}

// MaskEmail keeps the first character and domain of an address for logs.
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
